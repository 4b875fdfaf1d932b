// go-models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusReceived PaymentStatus = "Received"
	PaymentStatusOverdue  PaymentStatus = "Overdue"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusReceived,
	PaymentStatusOverdue,
	PaymentStatusRefunded,
}

// PaymentTransitions is the payment state machine. Refunded is terminal.
// The booking-cancellation cascade is the only writer allowed to skip it.
var PaymentTransitions = TransitionTable[PaymentStatus]{
	PaymentStatusPending:  {PaymentStatusReceived, PaymentStatusOverdue, PaymentStatusRefunded},
	PaymentStatusOverdue:  {PaymentStatusReceived, PaymentStatusRefunded},
	PaymentStatusReceived: {PaymentStatusRefunded},
	PaymentStatusRefunded: {},
}

// OpenPaymentStatuses are refunded by the booking-cancellation cascade.
var OpenPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusReceived,
	PaymentStatusOverdue,
}

func (s PaymentStatus) Valid() bool {
	return PaymentTransitions.Known(s)
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return PaymentTransitions.CanTransition(s, next)
}

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "Bank_Transfer"
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodOnline       PaymentMethod = "Online"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodRTGS         PaymentMethod = "RTGS"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodNetBanking   PaymentMethod = "Net_Banking"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodBankTransfer,
	PaymentMethodCash,
	PaymentMethodCheque,
	PaymentMethodOnline,
	PaymentMethodUPI,
	PaymentMethodRTGS,
	PaymentMethodCard,
	PaymentMethodNetBanking,
}

type Payment struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	UnitID     uuid.UUID `json:"unit_id"`
	TenantID   string    `json:"tenant_id"`

	Amount      decimal.Decimal `json:"amount"`
	Status      PaymentStatus   `json:"status"`
	Method      PaymentMethod   `json:"method"`
	PaymentType *string         `json:"payment_type,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	ReceiptNo   *string         `json:"receipt_no,omitempty"`
	RefundRefID *string         `json:"refund_ref_id,omitempty"`
	Notes       *string         `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) GetID() string {
	return p.ID.String()
}

// PaymentStatusTotal is one row of the payments summary.
type PaymentStatusTotal struct {
	Status PaymentStatus   `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}
