package controllers

import (
	"net/http"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: s}
}

// POST /api/v1/payments
func (c *PaymentController) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.paymentService.CreatePayment(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/payments?tenant_id=&booking_id=&status=
func (c *PaymentController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := optionalUUIDQuery(r, "booking_id")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	q := services.PaymentListQuery{TenantID: r.URL.Query().Get("tenant_id"), BookingID: bookingID}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.PaymentStatus(s)
		q.Status = &status
	}
	resp, err := c.paymentService.ListPayments(r.Context(), q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/payments/summary
func (c *PaymentController) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.paymentService.Summary(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/payments/{id}
func (c *PaymentController) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := c.paymentService.GetPayment(r.Context(), id)
	respondPayment(w, p, err)
}

// PATCH /api/v1/payments/{id}
func (c *PaymentController) UpdatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.paymentService.UpdatePayment(r.Context(), id, req)
	respondPayment(w, p, err)
}

// POST /api/v1/payments/{id}/mark-received
func (c *PaymentController) MarkReceivedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.MarkReceivedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.paymentService.MarkReceived(r.Context(), id, req)
	respondPayment(w, p, err)
}

// POST /api/v1/payments/{id}/cancel
func (c *PaymentController) CancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.CancelPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.paymentService.CancelPayment(r.Context(), id, req)
	respondPayment(w, p, err)
}

func respondPayment(w http.ResponseWriter, p *models.Payment, err error) {
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
