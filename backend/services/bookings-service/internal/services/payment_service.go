package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentListQuery narrows ListPayments. Zero values do not filter.
type PaymentListQuery struct {
	TenantID  string
	BookingID *uuid.UUID
	Status    *models.PaymentStatus
}

/*
PaymentService owns the payment state machine. Every status change made by a
caller goes through models.PaymentTransitions; the only exception is
CascadeRefundForBooking, the bulk refund triggered by a booking reaching a
terminal state.
*/
type PaymentService struct {
	tx     repositories.TxManager
	events EventPublisher
}

func NewPaymentService(tx repositories.TxManager, events EventPublisher) *PaymentService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &PaymentService{tx: tx, events: events}
}

func (s *PaymentService) CreatePayment(ctx context.Context, req dtos.CreatePaymentRequest) (*models.Payment, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	if err := checkTenantForWrite(ctx, req.TenantID); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}

	p := &models.Payment{
		ID:          uuid.New(),
		BookingID:   req.BookingID,
		CustomerID:  req.CustomerID,
		UnitID:      req.UnitID,
		TenantID:    req.TenantID,
		Amount:      req.Amount,
		Status:      status,
		Method:      req.Method,
		PaymentType: req.PaymentType,
		PaidAt:      req.PaidAt,
		ReceiptNo:   req.ReceiptNo,
		RefundRefID: req.RefundRefID,
		Notes:       req.Notes,
	}
	if p.Status == models.PaymentStatusReceived && p.PaidAt == nil {
		p.PaidAt = utils.Ptr(time.Now().UTC())
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repositories.Repos) error {
		// Row lock orders this insert against a concurrent cancellation cascade.
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return utils.NewInternalError("Failed to load booking", err)
		}
		if booking == nil || !visibleToCaller(ctx, booking.TenantID) {
			return bookingNotFound()
		}
		if booking.TenantID != req.TenantID {
			return fieldError("tenant_id", "validation_mismatch", "tenant_id does not match the booking")
		}
		if booking.UnitID != req.UnitID {
			return fieldError("unit_id", "validation_mismatch", "unit_id does not match the booking")
		}
		if booking.CustomerID != req.CustomerID {
			return fieldError("customer_id", "validation_mismatch", "customer_id does not match the booking")
		}
		if booking.Status.IsTerminal() && p.Status != models.PaymentStatusRefunded {
			return fieldError("booking_id", "validation_booking_closed",
				"booking is "+string(booking.Status)+"; only Refunded payments can be recorded")
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return storageError("Failed to create payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, paymentEvent(ctx, EventPaymentCreated, p, nil))
	return p, nil
}

func (s *PaymentService) MarkReceived(ctx context.Context, paymentID uuid.UUID, req dtos.MarkReceivedRequest) (*models.Payment, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, paymentID, func(p *models.Payment) error {
		if err := s.moveTo(p, models.PaymentStatusReceived); err != nil {
			return err
		}
		paidAt := req.PaidAt
		p.PaidAt = &paidAt
		if req.ReceiptNo != nil {
			p.ReceiptNo = req.ReceiptNo
		}
		return nil
	})
}

// CancelPayment refunds a single payment through the state machine.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID uuid.UUID, req dtos.CancelPaymentRequest) (*models.Payment, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, paymentID, func(p *models.Payment) error {
		if err := s.moveTo(p, models.PaymentStatusRefunded); err != nil {
			return err
		}
		if req.RefundRefID != nil {
			p.RefundRefID = req.RefundRefID
		}
		if req.Notes != nil {
			p.Notes = req.Notes
		}
		if req.PaidAt != nil {
			p.PaidAt = req.PaidAt
		}
		return nil
	})
}

// UpdatePayment applies a partial update. A status different from the current
// one is checked against the transition table; the same status is a plain edit.
func (s *PaymentService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, req dtos.UpdatePaymentRequest) (*models.Payment, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, paymentID, func(p *models.Payment) error {
		if req.Status != nil && *req.Status != p.Status {
			if err := s.moveTo(p, *req.Status); err != nil {
				return err
			}
		}
		if req.Method != nil {
			p.Method = *req.Method
		}
		if req.Amount != nil {
			p.Amount = *req.Amount
		}
		if req.PaidAt != nil {
			p.PaidAt = req.PaidAt
		}
		if req.PaymentType != nil {
			p.PaymentType = req.PaymentType
		}
		if req.ReceiptNo != nil {
			p.ReceiptNo = req.ReceiptNo
		}
		if req.Notes != nil {
			p.Notes = req.Notes
		}
		if req.RefundRefID != nil {
			p.RefundRefID = req.RefundRefID
		}
		return nil
	})
}

func (s *PaymentService) moveTo(p *models.Payment, next models.PaymentStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return invalidTransition("payment", p.Status, next, models.PaymentTransitions.Next(p.Status))
	}
	p.Status = next
	return nil
}

// mutate loads the payment under a row lock, applies fn and writes it back
// with a row_version check, all in one transaction.
func (s *PaymentService) mutate(ctx context.Context, paymentID uuid.UUID, fn func(*models.Payment) error) (*models.Payment, error) {
	var (
		updated *models.Payment
		from    models.PaymentStatus
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repositories.Repos) error {
		p, err := repos.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return utils.NewInternalError("Failed to load payment", err)
		}
		if p == nil || !visibleToCaller(ctx, p.TenantID) {
			return paymentNotFound()
		}
		from = p.Status
		expected := p.RowVersion
		if err := fn(p); err != nil {
			return err
		}
		tag, err := repos.Payments.UpdateIfVersion(ctx, p, expected)
		if err != nil {
			return storageError("Failed to update payment", err)
		}
		if tag.RowsAffected() != 1 {
			return rowVersionConflict(constants.ErrMsgPaymentChangedRefresh)
		}
		p.RowVersion = expected + 1
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.WithFields(logrus.Fields{
		"payment_id": updated.ID,
		"booking_id": updated.BookingID,
		"from":       from,
		"to":         updated.Status,
	}).Info("Payment updated")
	s.events.Publish(ctx, paymentEvent(ctx, EventPaymentUpdated, updated, &from))
	return updated, nil
}

// CascadeRefundForBooking moves every non-Refunded payment of the booking to
// Refunded in its own transaction, bypassing the per-payment transition rules.
func (s *PaymentService) CascadeRefundForBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	var refunded []uuid.UUID
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repositories.Repos) error {
		var err error
		refunded, err = s.cascadeRefund(ctx, repos, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

func (s *PaymentService) cascadeRefund(ctx context.Context, repos repositories.Repos, bookingID uuid.UUID) ([]uuid.UUID, error) {
	refunded, err := repos.Payments.RefundOpenByBooking(ctx, bookingID)
	if err != nil {
		return nil, storageError("Failed to refund booking payments", err)
	}
	if len(refunded) > 0 {
		utils.Logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"count":      len(refunded),
		}).Info("Cascade-refunded open payments")
	}
	return refunded, nil
}

// publishCascade emits one event per refunded payment after the booking commit.
func (s *PaymentService) publishCascade(ctx context.Context, b *models.Booking, refunded []uuid.UUID) {
	for _, id := range refunded {
		pid := id
		s.events.Publish(ctx, LifecycleEvent{
			Type:       EventPaymentCascadeRefunded,
			TenantID:   b.TenantID,
			UnitID:     b.UnitID,
			BookingID:  b.ID,
			PaymentID:  &pid,
			To:         string(models.PaymentStatusRefunded),
			ActorID:    utils.StaffIDFromContext(ctx),
			OccurredAt: time.Now().UTC(),
		})
	}
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	p, err := s.tx.Repos().Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load payment", err)
	}
	if p == nil || !visibleToCaller(ctx, p.TenantID) {
		return nil, paymentNotFound()
	}
	return p, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, q PaymentListQuery) (*dtos.ListPaymentsResponse, error) {
	filter := repositories.PaymentFilter{
		TenantID:  scopedTenant(ctx, q.TenantID),
		BookingID: q.BookingID,
	}
	if q.Status != nil {
		if !q.Status.Valid() {
			return nil, fieldError("status", "validation_oneof", "status must be one of Pending Received Overdue Refunded")
		}
		filter.Statuses = []models.PaymentStatus{*q.Status}
	}
	list, err := s.tx.Repos().Payments.List(ctx, filter)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list payments", err)
	}
	if list == nil {
		list = []*models.Payment{}
	}
	return &dtos.ListPaymentsResponse{Results: list, Total: len(list)}, nil
}

// Summary totals amount and count per status. Read-only.
func (s *PaymentService) Summary(ctx context.Context) (*dtos.PaymentsSummaryResponse, error) {
	totals, err := s.tx.Repos().Payments.Summary(ctx, utils.TenantIDFromContext(ctx))
	if err != nil {
		return nil, utils.NewInternalError("Failed to summarise payments", err)
	}
	resp := &dtos.PaymentsSummaryResponse{ByStatus: totals, TotalAmount: decimal.Zero}
	if resp.ByStatus == nil {
		resp.ByStatus = []models.PaymentStatusTotal{}
	}
	for _, t := range totals {
		resp.TotalCount += t.Count
		resp.TotalAmount = resp.TotalAmount.Add(t.Total)
	}
	return resp, nil
}
