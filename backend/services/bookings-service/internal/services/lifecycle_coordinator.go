package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	internal_utils "github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/utils"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// UnitStatusForBooking maps a booking status onto the unit status it implies.
func UnitStatusForBooking(s models.BookingStatus) (models.UnitStatus, bool) {
	switch s {
	case models.BookingStatusHoldRequested, models.BookingStatusHoldConfirmed:
		return models.UnitStatusHold, true
	case models.BookingStatusBookingPendingApproval,
		models.BookingStatusBookingConfirmed,
		models.BookingStatusPaymentPending,
		models.BookingStatusBooked:
		return models.UnitStatusBooked, true
	case models.BookingStatusCancelled, models.BookingStatusRefunded:
		return models.UnitStatusAvailable, true
	}
	return "", false
}

/*
LifecycleCoordinator keeps units in step with bookings and cascades terminal
booking states into payment refunds. Every method takes the repositories of
the caller's transaction, so its writes commit or roll back together with the
booking change that triggered them.
*/
type LifecycleCoordinator struct {
	units    *UnitRegistry
	payments *PaymentService
}

func NewLifecycleCoordinator(units *UnitRegistry, payments *PaymentService) *LifecycleCoordinator {
	return &LifecycleCoordinator{units: units, payments: payments}
}

// SyncUnitStatusFromBookingStatus applies the mapped unit status. A missing
// unit is logged and ignored.
func (c *LifecycleCoordinator) SyncUnitStatusFromBookingStatus(
	ctx context.Context,
	repos repositories.Repos,
	unitID uuid.UUID,
	bookingStatus models.BookingStatus,
) error {
	target, ok := UnitStatusForBooking(bookingStatus)
	if !ok {
		return nil
	}
	_, err := c.units.setStatus(ctx, repos.Units, unitID, target)
	if errors.Is(err, internal_utils.ErrUnitNotFound) {
		utils.Logger.WithFields(logrus.Fields{
			"unit_id":        unitID,
			"booking_status": bookingStatus,
		}).Warn("Unit missing during booking sync; leaving unit state untouched")
		return nil
	}
	return err
}

// AfterBookingTransition runs every cross-entity effect of a committed-to-be
// booking change and returns the ids of payments refunded by the cascade.
func (c *LifecycleCoordinator) AfterBookingTransition(
	ctx context.Context,
	repos repositories.Repos,
	b *models.Booking,
) ([]uuid.UUID, error) {
	if err := c.SyncUnitStatusFromBookingStatus(ctx, repos, b.UnitID, b.Status); err != nil {
		return nil, err
	}
	if !b.Status.IsTerminal() {
		return nil, nil
	}

	refunded, err := c.payments.cascadeRefund(ctx, repos, b.ID)
	if err != nil {
		return nil, err
	}
	if len(refunded) > 0 {
		details, err := auditDetails(map[string]any{"payment_ids": refunded})
		if err != nil {
			return nil, err
		}
		status := b.Status
		if err := repos.Audit.Create(ctx, &models.BookingAuditLog{
			ID:         uuid.New(),
			BookingID:  b.ID,
			TenantID:   b.TenantID,
			ActorID:    actorID(ctx),
			Action:     models.AuditCascade,
			FromStatus: &status,
			ToStatus:   status,
			Details:    details,
		}); err != nil {
			return nil, storageError("Failed to write cascade audit entry", err)
		}
	}
	return refunded, nil
}

// auditDetails encodes the JSON details column of an audit entry.
func auditDetails(details map[string]any) (*json.RawMessage, error) {
	if len(details) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, utils.NewInternalError("Failed to encode audit details", err)
	}
	raw := json.RawMessage(data)
	return &raw, nil
}
