package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBookingCache keeps the newest row_version per booking, like the
// Redis script does. beforeSet runs once, ahead of the first Set.
type memoryBookingCache struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]models.Booking
	beforeSet func()
}

func newMemoryBookingCache() *memoryBookingCache {
	return &memoryBookingCache{entries: map[uuid.UUID]models.Booking{}}
}

func (c *memoryBookingCache) Get(_ context.Context, id uuid.UUID) (*models.Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *memoryBookingCache) Set(_ context.Context, b *models.Booking) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[b.ID]; ok && cur.RowVersion > b.RowVersion {
		return nil
	}
	c.entries[b.ID] = *b
	return nil
}

func (c *memoryBookingCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func TestTransitionRefreshesCachedBooking(t *testing.T) {
	f := newFixture(t)
	cache := newMemoryBookingCache()
	f.bookings.cache = cache
	b, _ := f.newBooking(t)

	_, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)

	_, err = f.bookings.ApproveHold(f.ctx, b.ID, dtos.ApproveHoldRequest{ApprovedAt: testNow()})
	require.NoError(t, err)

	cached, ok := cache.Get(f.ctx, b.ID)
	require.True(t, ok)
	assert.Equal(t, models.BookingStatusHoldConfirmed, cached.Status)
	assert.EqualValues(t, 2, cached.RowVersion)
}

func TestStaleReadDoesNotOverwriteCommittedBooking(t *testing.T) {
	f := newFixture(t)
	cache := newMemoryBookingCache()
	f.bookings.cache = cache
	b, _ := f.newBooking(t)

	// The reader loads HOLD_REQUESTED, then a transition commits before the
	// reader fills the cache.
	cache.beforeSet = func() {
		_, err := f.bookings.ApproveHold(f.ctx, b.ID, dtos.ApproveHoldRequest{ApprovedAt: testNow()})
		require.NoError(t, err)
	}
	stale, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusHoldRequested, stale.Status)

	got, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusHoldConfirmed, got.Status)

	timeline, err := f.bookings.GetBookingTimeline(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusHoldConfirmed, timeline.Status)
}

func TestAuditDetails(t *testing.T) {
	raw, err := auditDetails(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = auditDetails(map[string]any{"cancellation_reason": "customer withdrew"})
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.JSONEq(t, `{"cancellation_reason":"customer withdrew"}`, string(*raw))

	_, err = auditDetails(map[string]any{"bad": make(chan int)})
	requireCode(t, err, "internal_server_error")
}
