//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/routes"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-testhelpers"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, method, route string, body any) *http.Response {
	t.Helper()
	var raw []byte
	if body != nil {
		raw = h.MarshalJSON(body)
	}
	return h.DoRequest(h.BuildAuthRequest(method, h.BaseURL+route, token, tenantID, raw))
}

func newBookingRequest(unit *models.Unit, customerID uuid.UUID) dtos.CreateBookingRequest {
	return dtos.CreateBookingRequest{
		UnitID:        unit.ID,
		CustomerID:    customerID,
		ProjectID:     unit.ProjectID,
		TenantID:      tenantID,
		TotalPrice:    unit.Price,
		TokenAmount:   decimal.NewFromInt(250000),
		CustomerName:  "Integration Customer",
		CustomerEmail: testhelpers.UniqueEmail("customer"),
		CustomerPhone: testhelpers.UniquePhone(),
	}
}

func TestBookingFlow_HoldToCancelReleasesUnitAndRefunds(t *testing.T) {
	unit := h.CreateTestUnit(h.Ctx, tenantID)
	customerID := uuid.New()

	resp := call(t, http.MethodPost, routes.BookingsBase, newBookingRequest(unit, customerID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dtos.CreateBookingResponse
	h.DecodeJSON(resp, &created)
	booking := created.Booking
	require.Equal(t, models.BookingStatusHoldRequested, booking.Status)

	stored, err := h.Repos.Units.GetByID(h.Ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusHold, stored.Status)

	resp = call(t, http.MethodPost, routes.Expand(routes.BookingApproveHold, booking.ID.String()),
		dtos.ApproveHoldRequest{ApprovedAt: time.Now().UTC()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, http.MethodPost, routes.Expand(routes.BookingApprove, booking.ID.String()),
		dtos.ApproveBookingRequest{Status: models.BookingStatusBooked, ApprovedAt: time.Now().UTC()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	stored, err = h.Repos.Units.GetByID(h.Ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusBooked, stored.Status)

	resp = call(t, http.MethodPost, routes.PaymentsBase, dtos.CreatePaymentRequest{
		BookingID:  booking.ID,
		CustomerID: customerID,
		UnitID:     unit.ID,
		TenantID:   tenantID,
		Amount:     decimal.NewFromInt(250000),
		Status:     models.PaymentStatusReceived,
		Method:     models.PaymentMethodUPI,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var payment models.Payment
	h.DecodeJSON(resp, &payment)
	require.NotNil(t, payment.PaidAt)

	resp = call(t, http.MethodPost, routes.Expand(routes.BookingReject, booking.ID.String()),
		dtos.RejectBookingRequest{Status: models.BookingStatusRefunded, RejectedAt: time.Now().UTC()})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "BOOKED cannot be rejected directly")
	resp.Body.Close()

	resp = call(t, http.MethodPatch, routes.Expand(routes.BookingStatus, booking.ID.String()),
		dtos.UpdateBookingStatusRequest{Status: models.BookingStatusBookingPendingApproval})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, http.MethodPost, routes.Expand(routes.BookingReject, booking.ID.String()),
		dtos.RejectBookingRequest{Status: models.BookingStatusRefunded, RejectedAt: time.Now().UTC()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	stored, err = h.Repos.Units.GetByID(h.Ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, stored.Status)

	refunded, err := h.Repos.Payments.GetByID(h.Ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)

	history, err := h.Repos.Audit.ListByBooking(h.Ctx, booking.ID)
	require.NoError(t, err)
	actions := make([]models.AuditAction, 0, len(history))
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, models.AuditCascade, actions[len(actions)-1])
}

func TestBookingFlow_ConcurrentHoldsOnOneUnit(t *testing.T) {
	unit := h.CreateTestUnit(h.Ctx, tenantID)

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := h.MarshalJSON(newBookingRequest(unit, uuid.New()))
			resp := h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.BookingsBase, token, tenantID, raw))
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	active, err := h.Repos.Bookings.FindActiveByUnit(h.Ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
}

func TestBookingFlow_OtherTenantCannotSeeBooking(t *testing.T) {
	unit := h.CreateTestUnit(h.Ctx, tenantID)
	resp := call(t, http.MethodPost, routes.BookingsBase, newBookingRequest(unit, uuid.New()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dtos.CreateBookingResponse
	h.DecodeJSON(resp, &created)

	otherTenant := testhelpers.UniqueTenant("it-other")
	otherToken := h.CreateStaffJWT(uuid.New(), otherTenant, "manager")
	req := h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.Expand(routes.BookingByID, created.Booking.ID.String()), otherToken, otherTenant, nil)
	resp = h.DoRequest(req)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body utils.ErrorResponse
	h.DecodeJSON(resp, &body)
	assert.Equal(t, utils.ErrCodeNotFound, body.Code)
}
