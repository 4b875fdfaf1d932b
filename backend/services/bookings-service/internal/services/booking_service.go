package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	internal_utils "github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/utils"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// BookingListQuery narrows ListBookings. Zero values do not filter.
type BookingListQuery struct {
	TenantID   string
	UnitID     *uuid.UUID
	CustomerID *uuid.UUID
	Status     *models.BookingStatus
}

// UnitConflictDetails is returned with CONFLICT when a unit is already claimed.
type UnitConflictDetails struct {
	UnitID        uuid.UUID            `json:"unit_id"`
	ActiveStatus  models.BookingStatus `json:"active_status"`
	ActiveSinceAt time.Time            `json:"active_since_at"`
}

type BookingService struct {
	tx          repositories.TxManager
	coordinator *LifecycleCoordinator
	payments    *PaymentService
	events      EventPublisher
	cache       BookingCache
	notifier    Notifier
}

func NewBookingService(
	tx repositories.TxManager,
	coordinator *LifecycleCoordinator,
	payments *PaymentService,
	events EventPublisher,
	cache BookingCache,
	notifier Notifier,
) *BookingService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	if cache == nil {
		cache = NoopBookingCache{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BookingService{
		tx:          tx,
		coordinator: coordinator,
		payments:    payments,
		events:      events,
		cache:       cache,
		notifier:    notifier,
	}
}

/*
CreateBooking places a HOLD_REQUESTED booking on a unit.

The active-booking check and the insert run under a per-unit advisory lock, so
two concurrent creates for one unit are serialised: the second one sees the
first booking and either returns it (same customer) or fails with CONFLICT.
The returned bool is false when an existing booking was returned.
*/
func (s *BookingService) CreateBooking(ctx context.Context, req dtos.CreateBookingRequest) (*models.Booking, bool, error) {
	if err := validatePayload(req); err != nil {
		return nil, false, err
	}
	if err := checkTenantForWrite(ctx, req.TenantID); err != nil {
		return nil, false, err
	}

	var (
		result  *models.Booking
		created bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repositories.Repos) error {
		if err := repos.Units.LockForBooking(ctx, req.UnitID); err != nil {
			return utils.NewInternalError("Failed to lock unit", err)
		}
		if err := checkUnitOwnership(ctx, repos, req); err != nil {
			return err
		}
		active, err := repos.Bookings.FindActiveByUnit(ctx, req.UnitID)
		if err != nil {
			return utils.NewInternalError("Failed to check unit availability", err)
		}
		if active != nil {
			if active.CustomerID == req.CustomerID && active.TenantID == req.TenantID {
				result = active
				return nil
			}
			return utils.NewConflictError(
				"Unit already has an active booking",
				UnitConflictDetails{UnitID: req.UnitID, ActiveStatus: active.Status, ActiveSinceAt: active.CreatedAt},
				internal_utils.ErrUnitConflict,
			)
		}

		b := &models.Booking{
			ID:            uuid.New(),
			UnitID:        req.UnitID,
			CustomerID:    req.CustomerID,
			ProjectID:     req.ProjectID,
			TenantID:      req.TenantID,
			AgentID:       req.AgentID,
			ManagerID:     req.ManagerID,
			TotalPrice:    req.TotalPrice,
			TokenAmount:   req.TokenAmount,
			Status:        models.BookingStatusHoldRequested,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerEmail: strings.TrimSpace(req.CustomerEmail),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			Notes:         utils.NonEmptyPtr(req.Notes),
			HoldExpiresAt: req.HoldExpiresAt,
		}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return storageError("Failed to create booking", err)
		}
		if err := repos.Audit.Create(ctx, &models.BookingAuditLog{
			ID:        uuid.New(),
			BookingID: b.ID,
			TenantID:  b.TenantID,
			ActorID:   actorID(ctx),
			Action:    models.AuditCreate,
			ToStatus:  b.Status,
		}); err != nil {
			return storageError("Failed to write booking audit entry", err)
		}
		if err := s.coordinator.SyncUnitStatusFromBookingStatus(ctx, repos, b.UnitID, b.Status); err != nil {
			return err
		}
		result = b
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		utils.Logger.WithFields(logrus.Fields{
			"booking_id":  result.ID,
			"unit_id":     result.UnitID,
			"customer_id": result.CustomerID,
		}).Info("Returning existing active booking for repeated create")
		return result, false, nil
	}

	utils.Logger.WithFields(logrus.Fields{
		"booking_id": result.ID,
		"unit_id":    result.UnitID,
		"tenant_id":  result.TenantID,
	}).Info("Booking created")
	s.events.Publish(ctx, bookingEvent(ctx, EventBookingCreated, result, nil))
	s.notifier.BookingStatusChanged(ctx, result, nil)
	return result, true, nil
}

// checkUnitOwnership rejects a create whose unit belongs to another tenant or
// project. Units the registry does not know are accepted.
func checkUnitOwnership(ctx context.Context, repos repositories.Repos, req dtos.CreateBookingRequest) error {
	unit, err := repos.Units.GetByID(ctx, req.UnitID)
	if err != nil {
		return utils.NewInternalError("Failed to load unit", err)
	}
	if unit == nil {
		return nil
	}
	if unit.TenantID != req.TenantID || !visibleToCaller(ctx, unit.TenantID) {
		return unitNotFound()
	}
	if unit.ProjectID != req.ProjectID {
		return fieldError("project_id", "validation_project", "project_id does not match the unit's project")
	}
	return nil
}

func (s *BookingService) ApproveHold(ctx context.Context, bookingID uuid.UUID, req dtos.ApproveHoldRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, models.BookingStatusHoldConfirmed, nil, func(b *models.Booking) {
		approvedAt := req.ApprovedAt
		b.ApprovedAt = &approvedAt
		s.applyManager(ctx, b, req.ManagerNotes)
	})
}

func (s *BookingService) RejectHold(ctx context.Context, bookingID uuid.UUID, req dtos.RejectHoldRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	reason, err := requiredReason(req.CancellationReason)
	if err != nil {
		return nil, err
	}
	details := map[string]any{"cancellation_reason": reason}
	return s.transition(ctx, bookingID, models.BookingStatusCancelled, details, func(b *models.Booking) {
		cancelledAt := req.CancelledAt
		b.CancelledAt = &cancelledAt
		b.CancellationReason = &reason
		s.applyManager(ctx, b, req.ManagerNotes)
	})
}

// ApproveBooking moves a booking to BOOKING_CONFIRMED or straight to BOOKED.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID uuid.UUID, req dtos.ApproveBookingRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, req.Status, nil, func(b *models.Booking) {
		approvedAt := req.ApprovedAt
		b.ApprovedAt = &approvedAt
		s.applyManager(ctx, b, req.ManagerNotes)
	})
}

// RejectBooking ends a booking as CANCELLED or REFUNDED.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID uuid.UUID, req dtos.RejectBookingRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	reason := utils.NonEmptyPtr(req.CancellationReason)
	var details map[string]any
	if reason != nil {
		details = map[string]any{"cancellation_reason": *reason}
	}
	return s.transition(ctx, bookingID, req.Status, details, func(b *models.Booking) {
		rejectedAt := req.RejectedAt
		b.RejectedAt = &rejectedAt
		if reason != nil {
			b.CancellationReason = reason
		}
		s.applyManager(ctx, b, req.ManagerNotes)
	})
}

// CancelBooking cancels the booking, frees the unit and refunds every open
// payment of the booking in the same transaction.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, req dtos.CancelBookingRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	reason, err := requiredReason(req.CancellationReason)
	if err != nil {
		return nil, err
	}
	details := map[string]any{"cancellation_reason": reason}
	return s.transition(ctx, bookingID, models.BookingStatusCancelled, details, func(b *models.Booking) {
		cancelledAt := req.CancelledAt
		b.CancelledAt = &cancelledAt
		b.CancellationReason = &reason
	})
}

// UpdateStatus is the generic entry point. It is bound by the same transition
// table as the dedicated operations.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, req dtos.UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	reason := utils.NonEmptyPtr(req.CancellationReason)
	var details map[string]any
	if reason != nil {
		details = map[string]any{"cancellation_reason": *reason}
	}
	return s.transition(ctx, bookingID, req.Status, details, func(b *models.Booking) {
		if req.ApprovedAt != nil {
			b.ApprovedAt = req.ApprovedAt
		}
		if req.RejectedAt != nil {
			b.RejectedAt = req.RejectedAt
		}
		if req.CancelledAt != nil {
			b.CancelledAt = req.CancelledAt
		}
		if b.Status == models.BookingStatusCancelled && b.CancelledAt == nil {
			b.CancelledAt = utils.Ptr(time.Now().UTC())
		}
		if reason != nil {
			b.CancellationReason = reason
		}
		s.applyManager(ctx, b, req.ManagerNotes)
	})
}

func (s *BookingService) applyManager(ctx context.Context, b *models.Booking, notes *string) {
	if notes != nil {
		b.ManagerNotes = utils.NonEmptyPtr(notes)
	}
	if id := actorID(ctx); id != nil {
		b.ManagerID = id
	}
}

func requiredReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", fieldError("cancellation_reason", "validation_required", "cancellation_reason is required")
	}
	return trimmed, nil
}

/*
transition is the single write path for booking status changes:

 1. load the booking under a row lock
 2. check the transition table
 3. persist with a row_version check
 4. write the audit entry, sync the unit and cascade refunds

Steps 1-4 share one transaction. The cache refresh, events and notifications
run after commit.
*/
func (s *BookingService) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	target models.BookingStatus,
	details map[string]any,
	apply func(*models.Booking),
) (*models.Booking, error) {
	var (
		updated  *models.Booking
		from     models.BookingStatus
		refunded []uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repositories.Repos) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return utils.NewInternalError("Failed to load booking", err)
		}
		if b == nil || !visibleToCaller(ctx, b.TenantID) {
			return bookingNotFound()
		}
		from = b.Status
		if !from.CanTransitionTo(target) {
			return invalidTransition("booking", from, target, models.BookingTransitions.Next(from))
		}

		expected := b.RowVersion
		b.Status = target
		apply(b)
		tag, err := repos.Bookings.UpdateIfVersion(ctx, b, expected)
		if err != nil {
			return storageError("Failed to update booking", err)
		}
		if tag.RowsAffected() != 1 {
			return rowVersionConflict(constants.ErrMsgRowVersionConflictRefresh)
		}
		b.RowVersion = expected + 1

		entry := &models.BookingAuditLog{
			ID:         uuid.New(),
			BookingID:  b.ID,
			TenantID:   b.TenantID,
			ActorID:    actorID(ctx),
			Action:     models.AuditTransition,
			FromStatus: &from,
			ToStatus:   target,
		}
		if entry.Details, err = auditDetails(details); err != nil {
			return err
		}
		if err := repos.Audit.Create(ctx, entry); err != nil {
			return storageError("Failed to write booking audit entry", err)
		}

		refunded, err = s.coordinator.AfterBookingTransition(ctx, repos, b)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"unit_id":    updated.UnitID,
		"from":       from,
		"to":         updated.Status,
		"refunded":   len(refunded),
	}).Info("Booking status changed")

	if err := s.cache.Set(ctx, updated); err != nil {
		s.cache.Invalidate(ctx, updated.ID)
	}
	s.events.Publish(ctx, bookingEvent(ctx, EventBookingStatusChanged, updated, &from))
	s.payments.publishCascade(ctx, updated, refunded)
	s.notifier.BookingStatusChanged(ctx, updated, &from)
	return updated, nil
}

// GetBooking reads through the cache. Cached entries of another tenant are
// treated like missing rows.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if b, ok := s.cache.Get(ctx, bookingID); ok && visibleToCaller(ctx, b.TenantID) {
		return b, nil
	}
	b, err := s.tx.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load booking", err)
	}
	if b == nil || !visibleToCaller(ctx, b.TenantID) {
		return nil, bookingNotFound()
	}
	_ = s.cache.Set(ctx, b)
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, q BookingListQuery) (*dtos.ListBookingsResponse, error) {
	filter := repositories.BookingFilter{
		TenantID:   scopedTenant(ctx, q.TenantID),
		UnitID:     q.UnitID,
		CustomerID: q.CustomerID,
	}
	if q.Status != nil {
		if !q.Status.Valid() {
			return nil, fieldError("status", "validation_oneof", "status is not a booking status")
		}
		filter.Statuses = []models.BookingStatus{*q.Status}
	}
	list, err := s.tx.Repos().Bookings.List(ctx, filter)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list bookings", err)
	}
	if list == nil {
		list = []*models.Booking{}
	}
	return &dtos.ListBookingsResponse{Results: list, Total: len(list)}, nil
}

// GetBookingTimeline lists the booking's recorded timestamps in lifecycle
// order. Missing timestamps are left out.
func (s *BookingService) GetBookingTimeline(ctx context.Context, bookingID uuid.UUID) (*dtos.BookingTimelineResponse, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &dtos.BookingTimelineResponse{
		BookingID: b.ID,
		Status:    b.Status,
		Events:    bookingTimeline(b),
	}, nil
}

func bookingTimeline(b *models.Booking) []dtos.TimelineEvent {
	events := []dtos.TimelineEvent{{Type: dtos.TimelineCreated, At: b.CreatedAt}}
	add := func(typ string, at *time.Time) {
		if at != nil {
			events = append(events, dtos.TimelineEvent{Type: typ, At: *at})
		}
	}
	add(dtos.TimelineHoldExpiresAt, b.HoldExpiresAt)
	add(dtos.TimelineApprovedAt, b.ApprovedAt)
	add(dtos.TimelineRejectedAt, b.RejectedAt)
	add(dtos.TimelineCancelledAt, b.CancelledAt)
	if !b.UpdatedAt.IsZero() && !b.UpdatedAt.Equal(b.CreatedAt) {
		events = append(events, dtos.TimelineEvent{Type: dtos.TimelineUpdated, At: b.UpdatedAt})
	}
	return events
}

func (s *BookingService) GetBookingHistory(ctx context.Context, bookingID uuid.UUID) (*dtos.BookingHistoryResponse, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	entries, err := s.tx.Repos().Audit.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load booking history", err)
	}
	if entries == nil {
		entries = []*models.BookingAuditLog{}
	}
	return &dtos.BookingHistoryResponse{BookingID: b.ID, Entries: entries}, nil
}

// ListStatuses describes both state machines as they are enforced.
func (s *BookingService) ListStatuses() *dtos.StatusCatalogResponse {
	resp := &dtos.StatusCatalogResponse{}
	for _, st := range models.BookingStatuses {
		resp.BookingStatuses = append(resp.BookingStatuses, statusTransitions(models.BookingTransitions, st))
	}
	for _, st := range models.PaymentStatuses {
		resp.PaymentStatuses = append(resp.PaymentStatuses, statusTransitions(models.PaymentTransitions, st))
	}
	for _, st := range models.UnitStatuses {
		resp.UnitStatuses = append(resp.UnitStatuses, string(st))
	}
	for _, m := range models.PaymentMethods {
		resp.PaymentMethods = append(resp.PaymentMethods, string(m))
	}
	return resp
}

func statusTransitions[S ~string](table models.TransitionTable[S], st S) dtos.StatusTransitions {
	next := table.Next(st)
	out := dtos.StatusTransitions{Status: string(st), Next: make([]string, 0, len(next)), Terminal: table.IsTerminal(st)}
	for _, n := range next {
		out.Next = append(out.Next, string(n))
	}
	return out
}
