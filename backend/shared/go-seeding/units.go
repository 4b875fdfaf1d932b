package seeding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
)

const DemoTenantID = "demo-tenant"

var (
	DemoProjectID = uuid.MustParse("6a1b2c3d-0000-4000-8000-000000000001")
	demoTower     = "Tower A"
)

// DemoUnits lists the fixed units used for local runs and integration tests.
// IDs are stable so repeated seeding is a no-op.
func DemoUnits() []*models.Unit {
	prices := []string{"4500000", "4750000", "5200000", "6100000", "7800000", "9950000"}
	units := make([]*models.Unit, 0, len(prices))
	for i, p := range prices {
		units = append(units, &models.Unit{
			ID:         uuid.MustParse(fmt.Sprintf("6a1b2c3d-0000-4000-8000-1000000000%02d", i+1)),
			ProjectID:  DemoProjectID,
			TenantID:   DemoTenantID,
			UnitNumber: fmt.Sprintf("A-%d0%d", i/2+1, i%2+1),
			TowerName:  &demoTower,
			Price:      decimal.RequireFromString(p),
			Status:     models.UnitStatusAvailable,
		})
	}
	return units
}

// SeedDemoUnits inserts every demo unit that does not exist yet and returns
// how many were created.
func SeedDemoUnits(ctx context.Context, unitRepo repositories.UnitRepository) (int, error) {
	created := 0
	for _, u := range DemoUnits() {
		existing, err := unitRepo.GetByID(ctx, u.ID)
		if err != nil {
			return created, fmt.Errorf("error checking for existing unit %s: %w", u.UnitNumber, err)
		}
		if existing != nil {
			continue
		}
		if err := unitRepo.Create(ctx, u); err != nil {
			return created, fmt.Errorf("failed to insert unit %s: %w", u.UnitNumber, err)
		}
		created++
	}

	if created == 0 {
		utils.Logger.Infof("Demo units already exist for tenant %s; skipping seed.", DemoTenantID)
	} else {
		utils.Logger.Infof("Seeded %d demo units for tenant %s.", created, DemoTenantID)
	}
	return created, nil
}
