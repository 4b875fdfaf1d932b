package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitionTable(t *testing.T) {
	require.Len(t, BookingTransitions, len(BookingStatuses), "every status needs a row")

	assert.True(t, BookingStatusHoldRequested.CanTransitionTo(BookingStatusHoldConfirmed))
	assert.True(t, BookingStatusBooked.CanTransitionTo(BookingStatusBookingPendingApproval))
	assert.False(t, BookingStatusHoldRequested.CanTransitionTo(BookingStatusBooked))
	assert.False(t, BookingStatusHoldRequested.CanTransitionTo(BookingStatusRefunded))
	assert.False(t, BookingStatusBooked.CanTransitionTo(BookingStatusCancelled))

	for _, s := range BookingStatuses {
		assert.False(t, s.CanTransitionTo(s), "%s must not loop to itself", s)
	}
	for _, s := range []BookingStatus{BookingStatusCancelled, BookingStatusRefunded} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.IsActive())
		assert.Empty(t, BookingTransitions.Next(s))
	}
	assert.ElementsMatch(t, ActiveBookingStatuses, activeFromTable())

	assert.False(t, BookingStatus("ARCHIVED").Valid())
	assert.False(t, BookingStatus("ARCHIVED").CanTransitionTo(BookingStatusCancelled))
}

func activeFromTable() []BookingStatus {
	var out []BookingStatus
	for _, s := range BookingStatuses {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

func TestPaymentTransitionTable(t *testing.T) {
	require.Len(t, PaymentTransitions, len(PaymentStatuses))

	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusOverdue))
	assert.True(t, PaymentStatusOverdue.CanTransitionTo(PaymentStatusReceived))
	assert.False(t, PaymentStatusReceived.CanTransitionTo(PaymentStatusPending))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusReceived))
	assert.True(t, PaymentTransitions.IsTerminal(PaymentStatusRefunded))
	assert.ElementsMatch(t, OpenPaymentStatuses, []PaymentStatus{PaymentStatusPending, PaymentStatusReceived, PaymentStatusOverdue})
}

func TestNextReturnsCopy(t *testing.T) {
	next := BookingTransitions.Next(BookingStatusHoldRequested)
	next[0] = BookingStatusRefunded
	assert.Equal(t, BookingStatusHoldConfirmed, BookingTransitions[BookingStatusHoldRequested][0])
}

func TestUnitStatusValid(t *testing.T) {
	for _, s := range UnitStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, UnitStatus("RESERVED").Valid())
}
