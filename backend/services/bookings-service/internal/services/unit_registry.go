package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"
)

/*
UnitRegistry is the single source of truth for a unit's sale status.

SOLD is sticky: setStatus never moves a unit out of SOLD and never writes when
the unit is already at the requested status. Only MarkSold (the administrative
path) can put a unit into SOLD.
*/
type UnitRegistry struct {
	tx repositories.TxManager
}

func NewUnitRegistry(tx repositories.TxManager) *UnitRegistry {
	return &UnitRegistry{tx: tx}
}

func (r *UnitRegistry) GetStatus(ctx context.Context, unitID uuid.UUID) (models.UnitStatus, error) {
	u, err := r.GetUnit(ctx, unitID)
	if err != nil {
		return "", err
	}
	return u.Status, nil
}

// SetStatus applies status outside any booking transaction.
func (r *UnitRegistry) SetStatus(ctx context.Context, unitID uuid.UUID, status models.UnitStatus) error {
	if !status.Valid() || status == models.UnitStatusSold {
		return fieldError("status", "validation_oneof", "status must be one of AVAILABLE HOLD BOOKED")
	}
	_, err := r.setStatus(ctx, r.tx.Repos().Units, unitID, status)
	return err
}

// setStatus runs on the given repository so callers can bind it to their
// transaction. It reports whether a write happened.
func (r *UnitRegistry) setStatus(
	ctx context.Context,
	units repositories.UnitRepository,
	unitID uuid.UUID,
	status models.UnitStatus,
) (bool, error) {
	changed := false
	var previous models.UnitStatus
	err := units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if u.Status == models.UnitStatusSold || u.Status == status {
			return repositories.ErrSkipUpdate
		}
		previous = u.Status
		u.Status = status
		changed = true
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return false, unitNotFound()
	}
	if errors.Is(err, repositories.ErrTooMuchContention) {
		return false, rowVersionConflict(constants.ErrMsgUnitChangedRefresh)
	}
	if err != nil {
		return false, utils.NewInternalError("Failed to update unit status", err)
	}
	if changed {
		utils.Logger.WithFields(logrus.Fields{
			"unit_id": unitID,
			"from":    previous,
			"to":      status,
		}).Info("Unit status updated")
	}
	return changed, nil
}

// MarkSold is the administrative path into SOLD.
func (r *UnitRegistry) MarkSold(ctx context.Context, unitID uuid.UUID) (*models.Unit, error) {
	if _, err := r.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	err := r.tx.Repos().Units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if u.Status == models.UnitStatusSold {
			return repositories.ErrSkipUpdate
		}
		u.Status = models.UnitStatusSold
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, unitNotFound()
	}
	if errors.Is(err, repositories.ErrTooMuchContention) {
		return nil, rowVersionConflict(constants.ErrMsgUnitChangedRefresh)
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to mark unit sold", err)
	}
	utils.Logger.WithField("unit_id", unitID).Info("Unit marked SOLD")
	return r.GetUnit(ctx, unitID)
}

// UpdateUnit edits a unit's number, tower and price. Status is left to the
// booking lifecycle and MarkSold.
func (r *UnitRegistry) UpdateUnit(ctx context.Context, unitID uuid.UUID, req dtos.UpdateUnitRequest) (*models.Unit, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	if req.UnitNumber == nil && req.TowerName == nil && req.Price == nil {
		return nil, fieldError("body", "validation_required", "at least one of unit_number, tower_name or price is required")
	}
	var unitNumber string
	if req.UnitNumber != nil {
		unitNumber = strings.TrimSpace(*req.UnitNumber)
		if unitNumber == "" {
			return nil, fieldError("unit_number", "validation_required", "unit_number must not be blank")
		}
	}
	if _, err := r.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}

	err := r.tx.Repos().Units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if req.UnitNumber != nil {
			u.UnitNumber = unitNumber
		}
		if req.TowerName != nil {
			u.TowerName = utils.NonEmptyPtr(req.TowerName)
		}
		if req.Price != nil {
			u.Price = *req.Price
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, unitNotFound()
	}
	if errors.Is(err, repositories.ErrTooMuchContention) {
		return nil, rowVersionConflict(constants.ErrMsgUnitChangedRefresh)
	}
	if err != nil {
		return nil, storageError("Failed to update unit", err)
	}
	utils.Logger.WithField("unit_id", unitID).Info("Unit updated")
	return r.GetUnit(ctx, unitID)
}

// CreateUnit registers a unit during project setup. New units are AVAILABLE.
func (r *UnitRegistry) CreateUnit(ctx context.Context, req dtos.CreateUnitRequest) (*models.Unit, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	if err := checkTenantForWrite(ctx, req.TenantID); err != nil {
		return nil, err
	}
	u := &models.Unit{
		ID:         uuid.New(),
		ProjectID:  req.ProjectID,
		TenantID:   req.TenantID,
		UnitNumber: req.UnitNumber,
		TowerName:  req.TowerName,
		Price:      req.Price,
		Status:     models.UnitStatusAvailable,
	}
	if req.ID != nil {
		u.ID = *req.ID
	}
	if err := r.tx.Repos().Units.Create(ctx, u); err != nil {
		return nil, storageError("Failed to create unit", err)
	}
	return u, nil
}

func (r *UnitRegistry) GetUnit(ctx context.Context, unitID uuid.UUID) (*models.Unit, error) {
	u, err := r.tx.Repos().Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load unit", err)
	}
	if u == nil || !visibleToCaller(ctx, u.TenantID) {
		return nil, unitNotFound()
	}
	return u, nil
}

func (r *UnitRegistry) ListUnits(ctx context.Context, projectID *uuid.UUID) (*dtos.ListUnitsResponse, error) {
	units, err := r.tx.Repos().Units.List(ctx, utils.TenantIDFromContext(ctx), projectID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list units", err)
	}
	if units == nil {
		units = []*models.Unit{}
	}
	return &dtos.ListUnitsResponse{Results: units, Total: len(units)}, nil
}
