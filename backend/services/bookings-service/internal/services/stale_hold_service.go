package services

import (
	"context"
	"time"

	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// StaleHoldService reports holds whose hold_expires_at has passed. Expiry is
// not enforced: nothing is cancelled and no unit is released.
type StaleHoldService struct {
	bookings repositories.BookingRepository
	now      func() time.Time
}

func NewStaleHoldService(bookings repositories.BookingRepository) *StaleHoldService {
	return &StaleHoldService{bookings: bookings, now: time.Now}
}

func (s *StaleHoldService) Report(ctx context.Context) ([]*models.Booking, error) {
	cutoff := s.now().UTC()
	stale, err := s.bookings.ListHoldsExpiredBefore(ctx, cutoff)
	if err != nil {
		utils.Logger.WithError(err).Error("Stale hold check failed")
		return nil, utils.NewInternalError("Failed to list stale holds", err)
	}
	for _, b := range stale {
		utils.Logger.WithFields(logrus.Fields{
			"booking_id":      b.ID,
			"unit_id":         b.UnitID,
			"tenant_id":       b.TenantID,
			"status":          b.Status,
			"hold_expires_at": b.HoldExpiresAt,
		}).Warn("Hold is past its expiry")
	}
	utils.Logger.Infof("Stale hold check finished: %d hold(s) past expiry", len(stale))
	return stale, nil
}
