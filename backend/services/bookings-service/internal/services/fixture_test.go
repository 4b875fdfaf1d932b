package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-testhelpers"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testTenant = "tenant-a"

type recordingPublisher struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt LifecycleEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx         context.Context
	store       *testhelpers.MemoryStore
	events      *recordingPublisher
	units       *UnitRegistry
	payments    *PaymentService
	coordinator *LifecycleCoordinator
	bookings    *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	events := &recordingPublisher{}
	units := NewUnitRegistry(store)
	payments := NewPaymentService(store, events)
	coordinator := NewLifecycleCoordinator(units, payments)
	return &fixture{
		ctx:         context.Background(),
		store:       store,
		events:      events,
		units:       units,
		payments:    payments,
		coordinator: coordinator,
		bookings:    NewBookingService(store, coordinator, payments, events, nil, nil),
	}
}

func (f *fixture) newUnit(t *testing.T) *models.Unit {
	t.Helper()
	return testhelpers.CreateTestUnit(f.ctx, t, f.store.Repos(), testTenant)
}

func (f *fixture) unitStatus(t *testing.T, id uuid.UUID) models.UnitStatus {
	t.Helper()
	u, err := f.store.Repos().Units.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Status
}

func (f *fixture) loadBooking(t *testing.T, id uuid.UUID) *models.Booking {
	t.Helper()
	b, err := f.store.Repos().Bookings.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func (f *fixture) loadPayment(t *testing.T, id uuid.UUID) *models.Payment {
	t.Helper()
	p, err := f.store.Repos().Payments.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func createRequest(unit *models.Unit, customerID uuid.UUID) dtos.CreateBookingRequest {
	return dtos.CreateBookingRequest{
		UnitID:        unit.ID,
		CustomerID:    customerID,
		ProjectID:     unit.ProjectID,
		TenantID:      unit.TenantID,
		TotalPrice:    decimal.NewFromInt(1000000),
		TokenAmount:   decimal.NewFromInt(50000),
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha.rao@example.com",
		CustomerPhone: "+919876500001",
	}
}

// newBooking creates a HOLD_REQUESTED booking on a fresh unit.
func (f *fixture) newBooking(t *testing.T) (*models.Booking, *models.Unit) {
	t.Helper()
	unit := f.newUnit(t)
	b, created, err := f.bookings.CreateBooking(f.ctx, createRequest(unit, uuid.New()))
	require.NoError(t, err)
	require.True(t, created)
	return b, unit
}

// forceBookingStatus writes a status directly, bypassing the state machine,
// to set up a starting point.
func (f *fixture) forceBookingStatus(t *testing.T, id uuid.UUID, status models.BookingStatus) {
	t.Helper()
	repos := f.store.Repos()
	b := f.loadBooking(t, id)
	b.Status = status
	tag, err := repos.Bookings.UpdateIfVersion(f.ctx, b, b.RowVersion)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

func (f *fixture) addPayment(t *testing.T, b *models.Booking, status models.PaymentStatus, amount int64) *models.Payment {
	t.Helper()
	p, err := f.payments.CreatePayment(f.ctx, dtos.CreatePaymentRequest{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		UnitID:     b.UnitID,
		TenantID:   b.TenantID,
		Amount:     decimal.NewFromInt(amount),
		Status:     status,
		Method:     models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, utils.AsAppError(err).Code, "unexpected error: %v", err)
}

func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
