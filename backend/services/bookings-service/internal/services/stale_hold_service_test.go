package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleHoldReportDoesNotMutate(t *testing.T) {
	f := newFixture(t)

	expired := testNow().Add(-time.Hour)
	unit := f.newUnit(t)
	req := createRequest(unit, uuid.New())
	req.HoldExpiresAt = &expired
	stale, _, err := f.bookings.CreateBooking(f.ctx, req)
	require.NoError(t, err)

	future := testNow().Add(24 * time.Hour)
	freshUnit := f.newUnit(t)
	freshReq := createRequest(freshUnit, uuid.New())
	freshReq.HoldExpiresAt = &future
	_, _, err = f.bookings.CreateBooking(f.ctx, freshReq)
	require.NoError(t, err)

	f.newBooking(t)

	report, err := NewStaleHoldService(f.store.Repos().Bookings).Report(f.ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, stale.ID, report[0].ID)

	assert.Equal(t, models.BookingStatusHoldRequested, f.loadBooking(t, stale.ID).Status)
	assert.Equal(t, models.UnitStatusHold, f.unitStatus(t, unit.ID))
}
