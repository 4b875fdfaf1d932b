package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/routes"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-middleware"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-testhelpers"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-a"

var project = uuid.MustParse("6f1c2a4e-8b3d-4c57-9a0e-2d7b5f3e9c11")

type api struct {
	t      *testing.T
	store  *testhelpers.MemoryStore
	router *mux.Router
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	units := services.NewUnitRegistry(store)
	payments := services.NewPaymentService(store, nil)
	coordinator := services.NewLifecycleCoordinator(units, payments)
	bookings := services.NewBookingService(store, coordinator, payments, nil, nil, nil)

	bc := NewBookingController(bookings)
	pc := NewPaymentController(payments)
	uc := NewUnitController(units)

	router := mux.NewRouter()
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.TenantHeaderMiddleware)
	secured.HandleFunc(routes.BookingsBase, bc.CreateBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingsBase, bc.ListBookingsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingsStatuses, bc.ListStatusesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingByID, bc.GetBookingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingTimeline, bc.GetBookingTimelineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingHistory, bc.GetBookingHistoryHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingApproveHold, bc.ApproveHoldHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingCancel, bc.CancelBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingStatus, bc.UpdateStatusHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.PaymentsBase, pc.CreatePaymentHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PaymentsSummary, pc.SummaryHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PaymentMarkReceived, pc.MarkReceivedHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitByID, uc.GetUnitHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminUnitsBase, uc.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminUnitByID, uc.UpdateUnitHandler).Methods(http.MethodPatch)

	return &api{t: t, store: store, router: router}
}

func (a *api) do(method, path, tenantID string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	if tenantID != "" {
		req.Header.Set(utils.TenantHeader, tenantID)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[utils.ErrorResponse](t, rec).Code
}

func (a *api) createUnit() uuid.UUID {
	a.t.Helper()
	rec := a.do(http.MethodPost, routes.AdminUnitsBase, tenant, map[string]any{
		"project_id":  project,
		"tenant_id":   tenant,
		"unit_number": "B-1204",
		"price":       "6500000",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Unit](a.t, rec).ID
}

func bookingBody(unitID, customerID uuid.UUID) map[string]any {
	return map[string]any{
		"unit_id":        unitID,
		"customer_id":    customerID,
		"project_id":     project,
		"tenant_id":      tenant,
		"total_price":    "6500000",
		"token_amount":   "100000",
		"customer_name":  "Asha Rao",
		"customer_email": "asha@example.com",
		"customer_phone": "+919800000001",
	}
}

func path(tmpl string, id uuid.UUID) string {
	return routes.Expand(tmpl, id.String())
}

func TestCreateBookingHandler(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()
	customer := uuid.New()

	rec := a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, customer))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[struct {
		Booking models.Booking `json:"booking"`
		Created bool           `json:"created"`
	}](t, rec)
	assert.True(t, first.Created)
	assert.Equal(t, models.BookingStatusHoldRequested, first.Booking.Status)

	// Same customer again: the active booking comes back.
	rec = a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, customer))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replay := decode[struct {
		Booking models.Booking `json:"booking"`
		Created bool           `json:"created"`
	}](t, rec)
	assert.False(t, replay.Created)
	assert.Equal(t, first.Booking.ID, replay.Booking.ID)

	// Someone else: conflict.
	rec = a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, uuid.New()))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, utils.ErrCodeConflict, errorCode(t, rec))

	rec = a.do(http.MethodGet, path(routes.UnitByID, unitID), tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.UnitStatusHold, decode[models.Unit](t, rec).Status)
}

func TestCreateBookingHandler_BadPayloads(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()

	withExtra := bookingBody(unitID, uuid.New())
	withExtra["surprise"] = true
	noEmail := bookingBody(unitID, uuid.New())
	delete(noEmail, "customer_email")

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"empty body", nil, utils.ErrCodeInvalidPayload},
		{"not json", "{nope", utils.ErrCodeInvalidPayload},
		{"unknown field", withExtra, utils.ErrCodeInvalidPayload},
		{"missing email", noEmail, utils.ErrCodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, routes.BookingsBase, tenant, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantCode, errorCode(t, rec))
		})
	}
}

func TestBookingHandlers_Lifecycle(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()

	rec := a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, uuid.New()))
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := decode[struct {
		Booking models.Booking `json:"booking"`
	}](t, rec).Booking.ID

	approveHold := map[string]any{"approved_at": time.Now().UTC()}
	rec = a.do(http.MethodPost, path(routes.BookingApproveHold, bookingID), tenant, approveHold)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.BookingStatusHoldConfirmed, decode[models.Booking](t, rec).Status)

	// Approving the hold twice is not a legal move.
	rec = a.do(http.MethodPost, path(routes.BookingApproveHold, bookingID), tenant, approveHold)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, utils.ErrCodeInvalidTransition, errorCode(t, rec))

	rec = a.do(http.MethodPatch, path(routes.BookingStatus, bookingID), tenant, map[string]any{
		"status": models.BookingStatusBookingPendingApproval,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, routes.PaymentsBase, tenant, map[string]any{
		"booking_id":  bookingID,
		"customer_id": decodeBooking(t, a, bookingID).CustomerID,
		"unit_id":     unitID,
		"tenant_id":   tenant,
		"amount":      "100000",
		"method":      models.PaymentMethodBankTransfer,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	payment := decode[models.Payment](t, rec)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	rec = a.do(http.MethodPost, path(routes.PaymentMarkReceived, payment.ID), tenant, map[string]any{
		"paid_at": time.Now().UTC(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.PaymentStatusReceived, decode[models.Payment](t, rec).Status)

	rec = a.do(http.MethodPost, path(routes.BookingCancel, bookingID), tenant, map[string]any{
		"cancelled_at":        time.Now().UTC(),
		"cancellation_reason": "Customer withdrew",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.BookingStatusCancelled, decode[models.Booking](t, rec).Status)

	rec = a.do(http.MethodGet, path(routes.UnitByID, unitID), tenant, nil)
	assert.Equal(t, models.UnitStatusAvailable, decode[models.Unit](t, rec).Status)

	rec = a.do(http.MethodGet, routes.PaymentsSummary, tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[struct {
		ByStatus []models.PaymentStatusTotal `json:"by_status"`
	}](t, rec)
	require.Len(t, summary.ByStatus, 1)
	assert.Equal(t, models.PaymentStatusRefunded, summary.ByStatus[0].Status)

	rec = a.do(http.MethodGet, path(routes.BookingTimeline, bookingID), tenant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, path(routes.BookingHistory, bookingID), tenant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func decodeBooking(t *testing.T, a *api, id uuid.UUID) models.Booking {
	rec := a.do(http.MethodGet, path(routes.BookingByID, id), tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Booking](t, rec)
}

func TestGetBookingHandler_ScopedAndMalformed(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()
	rec := a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, uuid.New()))
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := decode[struct {
		Booking models.Booking `json:"booking"`
	}](t, rec).Booking.ID

	rec = a.do(http.MethodGet, path(routes.BookingByID, bookingID), "tenant-b", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, utils.ErrCodeNotFound, errorCode(t, rec))

	rec = a.do(http.MethodGet, routes.Expand(routes.BookingByID, "not-a-uuid"), tenant, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeValidation, errorCode(t, rec))

	rec = a.do(http.MethodGet, routes.BookingsBase+"?unit_id=nope", tenant, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStatusesHandler(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, routes.BookingsStatuses, tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(models.BookingStatusHoldRequested))
	assert.Contains(t, rec.Body.String(), string(models.PaymentStatusRefunded))
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		cache      Pinger
		wantStatus int
		wantCache  string
	}{
		{"db only", stubPinger{}, nil, http.StatusOK, ""},
		{"all up", stubPinger{}, stubPinger{}, http.StatusOK, "OK"},
		{"cache down", stubPinger{}, stubPinger{errors.New("dial tcp")}, http.StatusOK, "DEGRADED"},
		{"db down", stubPinger{errors.New("dial tcp")}, nil, http.StatusServiceUnavailable, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthController(tc.db, tc.cache).HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, routes.Health, nil))
			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}
			var body struct {
				Status       string            `json:"status"`
				Dependencies map[string]string `json:"dependencies"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "OK", body.Status)
			assert.Equal(t, tc.wantCache, body.Dependencies["cache"])
		})
	}
}

func TestUpdateUnitHandler(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()

	rec := a.do(http.MethodPatch, path(routes.AdminUnitByID, unitID), tenant, map[string]any{
		"tower_name": "Tower D",
		"price":      "7000000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u := decode[models.Unit](t, rec)
	require.NotNil(t, u.TowerName)
	assert.Equal(t, "Tower D", *u.TowerName)
	assert.Equal(t, "B-1204", u.UnitNumber)
	assert.Equal(t, models.UnitStatusAvailable, u.Status)

	rec = a.do(http.MethodPatch, path(routes.AdminUnitByID, unitID), tenant, map[string]any{"status": "SOLD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "status is not an editable field")

	rec = a.do(http.MethodPatch, path(routes.AdminUnitByID, unitID), "tenant-b", map[string]any{"price": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, utils.ErrCodeNotFound, errorCode(t, rec))
}

func TestCreateBookingHandlerOnOtherTenantsUnit(t *testing.T) {
	a := newAPI(t)
	unitID := a.createUnit()

	body := bookingBody(unitID, uuid.New())
	body["tenant_id"] = "tenant-b"
	rec := a.do(http.MethodPost, routes.BookingsBase, "tenant-b", body)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, routes.BookingsBase, tenant, bookingBody(unitID, uuid.New()))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
