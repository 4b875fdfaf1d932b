package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest places a hold on a unit for a customer.
type CreateBookingRequest struct {
	UnitID        uuid.UUID       `json:"unit_id" validate:"required"`
	CustomerID    uuid.UUID       `json:"customer_id" validate:"required"`
	ProjectID     uuid.UUID       `json:"project_id" validate:"required"`
	TenantID      string          `json:"tenant_id" validate:"required,max=64"`
	TotalPrice    decimal.Decimal `json:"total_price" validate:"gt=0,lt=1000000000000"`
	TokenAmount   decimal.Decimal `json:"token_amount" validate:"gt=0,lt=1000000000000"`
	CustomerName  string          `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string          `json:"customer_email" validate:"required,email"`
	CustomerPhone string          `json:"customer_phone" validate:"required,min=7,max=20"`
	Notes         *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
	AgentID       *uuid.UUID      `json:"agent_id,omitempty"`
	ManagerID     *uuid.UUID      `json:"manager_id,omitempty"`
	HoldExpiresAt *time.Time      `json:"hold_expires_at,omitempty"`
}

type ApproveHoldRequest struct {
	ApprovedAt   time.Time `json:"approved_at" validate:"required"`
	ManagerNotes *string   `json:"manager_notes,omitempty" validate:"omitempty,max=2000"`
}

type RejectHoldRequest struct {
	CancelledAt        time.Time `json:"cancelled_at" validate:"required"`
	CancellationReason string    `json:"cancellation_reason" validate:"required,max=500"`
	ManagerNotes       *string   `json:"manager_notes,omitempty" validate:"omitempty,max=2000"`
}

type ApproveBookingRequest struct {
	Status       models.BookingStatus `json:"status" validate:"required,oneof=BOOKING_CONFIRMED BOOKED"`
	ApprovedAt   time.Time            `json:"approved_at" validate:"required"`
	ManagerNotes *string              `json:"manager_notes,omitempty" validate:"omitempty,max=2000"`
}

type RejectBookingRequest struct {
	Status             models.BookingStatus `json:"status" validate:"required,oneof=CANCELLED REFUNDED"`
	RejectedAt         time.Time            `json:"rejected_at" validate:"required"`
	CancellationReason *string              `json:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
	ManagerNotes       *string              `json:"manager_notes,omitempty" validate:"omitempty,max=2000"`
}

type CancelBookingRequest struct {
	CancelledAt        time.Time `json:"cancelled_at" validate:"required"`
	CancellationReason string    `json:"cancellation_reason" validate:"required,max=500"`
}

// UpdateBookingStatusRequest is the generic transition entry point. It is
// still bound by the booking transition table.
type UpdateBookingStatusRequest struct {
	Status             models.BookingStatus `json:"status" validate:"required,oneof=HOLD_REQUESTED HOLD_CONFIRMED BOOKING_PENDING_APPROVAL BOOKING_CONFIRMED PAYMENT_PENDING BOOKED CANCELLED REFUNDED"`
	ApprovedAt         *time.Time           `json:"approved_at,omitempty"`
	RejectedAt         *time.Time           `json:"rejected_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
	ManagerNotes       *string              `json:"manager_notes,omitempty" validate:"omitempty,max=2000"`
}

type CreateBookingResponse struct {
	Booking *models.Booking `json:"booking"`
	Created bool            `json:"created"`
}

type ListBookingsResponse struct {
	Results []*models.Booking `json:"results"`
	Total   int               `json:"total"`
}

// Timeline event types, in lifecycle order.
const (
	TimelineCreated       = "CREATED"
	TimelineHoldExpiresAt = "HOLD_EXPIRES_AT"
	TimelineApprovedAt    = "APPROVED_AT"
	TimelineRejectedAt    = "REJECTED_AT"
	TimelineCancelledAt   = "CANCELLED_AT"
	TimelineUpdated       = "UPDATED"
)

type TimelineEvent struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

type BookingTimelineResponse struct {
	BookingID uuid.UUID            `json:"booking_id"`
	Status    models.BookingStatus `json:"status"`
	Events    []TimelineEvent      `json:"events"`
}

type BookingHistoryResponse struct {
	BookingID uuid.UUID                 `json:"booking_id"`
	Entries   []*models.BookingAuditLog `json:"entries"`
}

// StatusTransitions lists one status and the statuses it may move to.
type StatusTransitions struct {
	Status   string   `json:"status"`
	Next     []string `json:"next"`
	Terminal bool     `json:"terminal"`
}

type StatusCatalogResponse struct {
	BookingStatuses []StatusTransitions `json:"booking_statuses"`
	PaymentStatuses []StatusTransitions `json:"payment_statuses"`
	UnitStatuses    []string            `json:"unit_statuses"`
	PaymentMethods  []string            `json:"payment_methods"`
}
