package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	internal_utils "github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/utils"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitRegistrySetStatus(t *testing.T) {
	f := newFixture(t)
	unit := f.newUnit(t)

	require.NoError(t, f.units.SetStatus(f.ctx, unit.ID, models.UnitStatusHold))
	status, err := f.units.GetStatus(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusHold, status)

	before := f.store.Repos()
	u, err := before.Units.GetByID(f.ctx, unit.ID)
	require.NoError(t, err)

	// Same status is a silent no-op.
	require.NoError(t, f.units.SetStatus(f.ctx, unit.ID, models.UnitStatusHold))
	after, err := before.Units.GetByID(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, u.RowVersion, after.RowVersion)

	err = f.units.SetStatus(f.ctx, unit.ID, models.UnitStatusSold)
	requireCode(t, err, utils.ErrCodeValidation)

	err = f.units.SetStatus(f.ctx, uuid.New(), models.UnitStatusBooked)
	requireCode(t, err, utils.ErrCodeNotFound)
	assert.True(t, errors.Is(err, internal_utils.ErrUnitNotFound))
}

func TestUnitRegistrySoldIsSticky(t *testing.T) {
	f := newFixture(t)
	unit := f.newUnit(t)

	sold, err := f.units.MarkSold(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusSold, sold.Status)

	for _, s := range []models.UnitStatus{models.UnitStatusAvailable, models.UnitStatusHold, models.UnitStatusBooked} {
		require.NoError(t, f.units.SetStatus(f.ctx, unit.ID, s))
		assert.Equal(t, models.UnitStatusSold, f.unitStatus(t, unit.ID))
	}

	again, err := f.units.MarkSold(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, sold.RowVersion, again.RowVersion)
}

func TestUnitRegistryCreateAndList(t *testing.T) {
	f := newFixture(t)
	projectID := uuid.New()

	u, err := f.units.CreateUnit(f.ctx, dtos.CreateUnitRequest{
		ProjectID:  projectID,
		TenantID:   testTenant,
		UnitNumber: "B-1203",
		TowerName:  utils.Ptr("Tower B"),
		Price:      decimal.RequireFromString("9850000.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, u.Status)
	f.newUnit(t)

	list, err := f.units.ListUnits(f.ctx, &projectID)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, u.ID, list.Results[0].ID)

	all, err := f.units.ListUnits(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	_, err = f.units.CreateUnit(f.ctx, dtos.CreateUnitRequest{ProjectID: projectID, TenantID: testTenant, UnitNumber: "B-1204"})
	requireCode(t, err, utils.ErrCodeValidation)

	_, err = f.units.GetUnit(utils.WithTenantID(f.ctx, "tenant-b"), u.ID)
	requireCode(t, err, utils.ErrCodeNotFound)
}

func TestUnitRegistryUpdateUnit(t *testing.T) {
	f := newFixture(t)
	b, unit := f.newBooking(t)
	require.Equal(t, models.UnitStatusHold, f.unitStatus(t, unit.ID))
	before, err := f.units.GetUnit(f.ctx, unit.ID)
	require.NoError(t, err)

	updated, err := f.units.UpdateUnit(f.ctx, unit.ID, dtos.UpdateUnitRequest{
		UnitNumber: utils.Ptr(" C-0702 "),
		TowerName:  utils.Ptr("Tower C"),
		Price:      utils.Ptr(decimal.RequireFromString("7250000.50")),
	})
	require.NoError(t, err)
	assert.Equal(t, "C-0702", updated.UnitNumber)
	require.NotNil(t, updated.TowerName)
	assert.Equal(t, "Tower C", *updated.TowerName)
	assert.True(t, decimal.RequireFromString("7250000.50").Equal(updated.Price))
	assert.Equal(t, models.UnitStatusHold, updated.Status, "edits never touch status")
	assert.Equal(t, before.RowVersion+1, updated.RowVersion)
	assert.Equal(t, unit.ID, f.loadBooking(t, b.ID).UnitID)

	tests := []struct {
		name string
		req  dtos.UpdateUnitRequest
	}{
		{"empty", dtos.UpdateUnitRequest{}},
		{"blank unit number", dtos.UpdateUnitRequest{UnitNumber: utils.Ptr("   ")}},
		{"zero price", dtos.UpdateUnitRequest{Price: utils.Ptr(decimal.Zero)}},
		{"price beyond column precision", dtos.UpdateUnitRequest{Price: utils.Ptr(decimal.NewFromInt(1_000_000_000_000))}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.units.UpdateUnit(f.ctx, unit.ID, tc.req)
			requireCode(t, err, utils.ErrCodeValidation)
		})
	}

	_, err = f.units.UpdateUnit(utils.WithTenantID(f.ctx, "tenant-b"), unit.ID, dtos.UpdateUnitRequest{TowerName: utils.Ptr("X")})
	requireCode(t, err, utils.ErrCodeNotFound)

	_, err = f.units.UpdateUnit(f.ctx, uuid.New(), dtos.UpdateUnitRequest{TowerName: utils.Ptr("X")})
	requireCode(t, err, utils.ErrCodeNotFound)
}
