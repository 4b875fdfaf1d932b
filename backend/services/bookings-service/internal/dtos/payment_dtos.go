package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	BookingID   uuid.UUID            `json:"booking_id" validate:"required"`
	CustomerID  uuid.UUID            `json:"customer_id" validate:"required"`
	UnitID      uuid.UUID            `json:"unit_id" validate:"required"`
	TenantID    string               `json:"tenant_id" validate:"required,max=64"`
	Amount      decimal.Decimal      `json:"amount" validate:"gt=0,lt=1000000000000"`
	Status      models.PaymentStatus `json:"status" validate:"omitempty,oneof=Pending Received Overdue Refunded"`
	Method      models.PaymentMethod `json:"method" validate:"required,oneof=Bank_Transfer Cash Cheque Online UPI RTGS Card Net_Banking"`
	PaidAt      *time.Time           `json:"paid_at,omitempty"`
	PaymentType *string              `json:"payment_type,omitempty" validate:"omitempty,max=100"`
	ReceiptNo   *string              `json:"receipt_no,omitempty" validate:"omitempty,max=100"`
	RefundRefID *string              `json:"refund_ref_id,omitempty" validate:"omitempty,max=100"`
	Notes       *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type MarkReceivedRequest struct {
	PaidAt    time.Time `json:"paid_at" validate:"required"`
	ReceiptNo *string   `json:"receipt_no,omitempty" validate:"omitempty,max=100"`
}

type CancelPaymentRequest struct {
	RefundRefID *string    `json:"refund_ref_id,omitempty" validate:"omitempty,max=100"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// UpdatePaymentRequest carries a partial update; nil fields are left alone.
type UpdatePaymentRequest struct {
	Status      *models.PaymentStatus `json:"status,omitempty" validate:"omitempty,oneof=Pending Received Overdue Refunded"`
	Method      *models.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=Bank_Transfer Cash Cheque Online UPI RTGS Card Net_Banking"`
	Amount      *decimal.Decimal      `json:"amount,omitempty" validate:"omitempty,gt=0,lt=1000000000000"`
	PaidAt      *time.Time            `json:"paid_at,omitempty"`
	PaymentType *string               `json:"payment_type,omitempty" validate:"omitempty,max=100"`
	ReceiptNo   *string               `json:"receipt_no,omitempty" validate:"omitempty,max=100"`
	Notes       *string               `json:"notes,omitempty" validate:"omitempty,max=2000"`
	RefundRefID *string               `json:"refund_ref_id,omitempty" validate:"omitempty,max=100"`
}

type ListPaymentsResponse struct {
	Results []*models.Payment `json:"results"`
	Total   int               `json:"total"`
}

type PaymentsSummaryResponse struct {
	ByStatus    []models.PaymentStatusTotal `json:"by_status"`
	TotalCount  int64                       `json:"total_count"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
}
