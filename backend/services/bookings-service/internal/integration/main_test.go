//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/config"
	"github.com/harshil90956/CRM-backend/backend/shared/go-testhelpers"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	_ "time/tzdata"
)

var (
	h        *testhelpers.TestHelper
	tenantID string
	staffID  uuid.UUID
	token    string
)

// TestMain sets up a single TestHelper for all integration tests in this
// package. The service must already be running at APP_URL_FROM_ANYWHERE.
func TestMain(m *testing.M) {
	utils.InitLogger(config.DefaultAppName)

	t := &testing.T{}
	h = testhelpers.NewTestHelper(t)

	tenantID = testhelpers.UniqueTenant("it")
	staffID = uuid.New()
	token = h.CreateStaffJWT(staffID, tenantID, "manager")

	code := m.Run()
	h.DB.Close()
	os.Exit(code)
}
