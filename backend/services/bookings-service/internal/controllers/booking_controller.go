package controllers

import (
	"net/http"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

type BookingController struct {
	bookingService *services.BookingService
}

func NewBookingController(s *services.BookingService) *BookingController {
	return &BookingController{bookingService: s}
}

// POST /api/v1/bookings
// 201 for a new booking, 200 when an active booking of the same customer is returned.
func (c *BookingController) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, created, err := c.bookingService.CreateBooking(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, dtos.CreateBookingResponse{Booking: b, Created: created})
}

// GET /api/v1/bookings?tenant_id=&unit_id=&customer_id=&status=
func (c *BookingController) ListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	q := services.BookingListQuery{TenantID: r.URL.Query().Get("tenant_id")}
	var err error
	if q.UnitID, err = optionalUUIDQuery(r, "unit_id"); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	if q.CustomerID, err = optionalUUIDQuery(r, "customer_id"); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.BookingStatus(s)
		q.Status = &status
	}

	resp, err := c.bookingService.ListBookings(r.Context(), q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/bookings/statuses
func (c *BookingController) ListStatusesHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.bookingService.ListStatuses())
}

// GET /api/v1/bookings/{id}
func (c *BookingController) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := c.bookingService.GetBooking(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// GET /api/v1/bookings/{id}/timeline
func (c *BookingController) GetBookingTimelineHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resp, err := c.bookingService.GetBookingTimeline(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/bookings/{id}/history
func (c *BookingController) GetBookingHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resp, err := c.bookingService.GetBookingHistory(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/bookings/{id}/approve-hold
func (c *BookingController) ApproveHoldHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.ApproveHoldRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.ApproveHold(r.Context(), id, req)
	respondBooking(w, b, err)
}

// POST /api/v1/bookings/{id}/reject-hold
func (c *BookingController) RejectHoldHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.RejectHoldRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.RejectHold(r.Context(), id, req)
	respondBooking(w, b, err)
}

// POST /api/v1/bookings/{id}/approve
func (c *BookingController) ApproveBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.ApproveBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.ApproveBooking(r.Context(), id, req)
	respondBooking(w, b, err)
}

// POST /api/v1/bookings/{id}/reject
func (c *BookingController) RejectBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.RejectBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.RejectBooking(r.Context(), id, req)
	respondBooking(w, b, err)
}

// POST /api/v1/bookings/{id}/cancel
func (c *BookingController) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.CancelBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.CancelBooking(r.Context(), id, req)
	respondBooking(w, b, err)
}

// PATCH /api/v1/bookings/{id}/status
func (c *BookingController) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateBookingStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.bookingService.UpdateStatus(r.Context(), id, req)
	respondBooking(w, b, err)
}

func respondBooking(w http.ResponseWriter, b *models.Booking, err error) {
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}
