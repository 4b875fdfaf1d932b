// go-models/booking.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusHoldRequested          BookingStatus = "HOLD_REQUESTED"
	BookingStatusHoldConfirmed          BookingStatus = "HOLD_CONFIRMED"
	BookingStatusBookingPendingApproval BookingStatus = "BOOKING_PENDING_APPROVAL"
	BookingStatusBookingConfirmed       BookingStatus = "BOOKING_CONFIRMED"
	BookingStatusPaymentPending         BookingStatus = "PAYMENT_PENDING"
	BookingStatusBooked                 BookingStatus = "BOOKED"
	BookingStatusCancelled              BookingStatus = "CANCELLED"
	BookingStatusRefunded               BookingStatus = "REFUNDED"
)

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{
	BookingStatusHoldRequested,
	BookingStatusHoldConfirmed,
	BookingStatusBookingPendingApproval,
	BookingStatusBookingConfirmed,
	BookingStatusPaymentPending,
	BookingStatusBooked,
	BookingStatusCancelled,
	BookingStatusRefunded,
}

// BookingTransitions is the booking state machine. CANCELLED and REFUNDED are
// terminal; BOOKED may go back to BOOKING_PENDING_APPROVAL for re-approval.
var BookingTransitions = TransitionTable[BookingStatus]{
	BookingStatusHoldRequested: {
		BookingStatusHoldConfirmed,
		BookingStatusCancelled,
	},
	BookingStatusHoldConfirmed: {
		BookingStatusBookingPendingApproval,
		BookingStatusBookingConfirmed,
		BookingStatusBooked,
		BookingStatusCancelled,
	},
	BookingStatusBookingPendingApproval: {
		BookingStatusBookingConfirmed,
		BookingStatusCancelled,
		BookingStatusRefunded,
	},
	BookingStatusBookingConfirmed: {
		BookingStatusPaymentPending,
		BookingStatusBooked,
		BookingStatusCancelled,
		BookingStatusRefunded,
	},
	BookingStatusPaymentPending: {
		BookingStatusBooked,
		BookingStatusCancelled,
		BookingStatusRefunded,
	},
	BookingStatusBooked: {
		BookingStatusBookingPendingApproval,
	},
	BookingStatusCancelled: {},
	BookingStatusRefunded:  {},
}

// ActiveBookingStatuses are the statuses that hold a claim on the unit.
// At most one booking per unit may be in this set.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusHoldRequested,
	BookingStatusHoldConfirmed,
	BookingStatusBookingPendingApproval,
	BookingStatusBookingConfirmed,
	BookingStatusPaymentPending,
	BookingStatusBooked,
}

func (s BookingStatus) Valid() bool {
	return BookingTransitions.Known(s)
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return BookingTransitions.CanTransition(s, next)
}

func (s BookingStatus) IsTerminal() bool {
	return BookingTransitions.IsTerminal(s)
}

func (s BookingStatus) IsActive() bool {
	return s.Valid() && !s.IsTerminal()
}

type Booking struct {
	Versioned

	ID         uuid.UUID  `json:"id"`
	UnitID     uuid.UUID  `json:"unit_id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	TenantID   string     `json:"tenant_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`
	ManagerID  *uuid.UUID `json:"manager_id,omitempty"`

	TotalPrice  decimal.Decimal `json:"total_price"`
	TokenAmount decimal.Decimal `json:"token_amount"`
	Status      BookingStatus   `json:"status"`

	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	Notes         *string `json:"notes,omitempty"`

	HoldExpiresAt      *time.Time `json:"hold_expires_at,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	ManagerNotes       *string    `json:"manager_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) GetID() string {
	return b.ID.String()
}
