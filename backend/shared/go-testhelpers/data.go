// backend/shared/go-testhelpers/data.go

package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// UniqueTenant returns a tenant id that no other test run uses.
func UniqueTenant(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// UniquePhone generates a unique phone number for testing.
func UniquePhone() string {
	return fmt.Sprintf("+91987%07d", time.Now().UnixNano()%1e7)
}

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// NewTestUnit builds (but does not persist) an AVAILABLE unit.
func NewTestUnit(tenantID string) *models.Unit {
	return &models.Unit{
		ID:         uuid.New(),
		ProjectID:  uuid.New(),
		TenantID:   tenantID,
		UnitNumber: "A-" + uuid.NewString()[:4],
		TowerName:  utils.Ptr("Tower A"),
		Price:      decimal.RequireFromString("7500000.00"),
		Status:     models.UnitStatusAvailable,
	}
}

// CreateTestUnit persists a new AVAILABLE unit through repos.
func CreateTestUnit(ctx context.Context, t *testing.T, repos repositories.Repos, tenantID string) *models.Unit {
	t.Helper()
	u := NewTestUnit(tenantID)
	require.NoError(t, repos.Units.Create(ctx, u), "Failed to create test unit")
	return u
}

// CreateTestUnit persists a new AVAILABLE unit against the integration database.
func (h *TestHelper) CreateTestUnit(ctx context.Context, tenantID string) *models.Unit {
	return CreateTestUnit(ctx, h.T, h.Repos, tenantID)
}
