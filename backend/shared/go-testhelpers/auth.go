package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-middleware"
	"github.com/stretchr/testify/require"
)

// CreateStaffJWT creates an access token for a staff member of tenantID.
// Returns "" when the helper has no private key (service running unauthenticated).
func (h *TestHelper) CreateStaffJWT(staffID uuid.UUID, tenantID, role string) string {
	if h.PrivateKey == nil {
		return ""
	}
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss":       middleware.TokenIssuer,
		"sub":       staffID.String(),
		"tenant_id": tenantID,
		"role":      role,
		"iat":       now,
		"exp":       now + 15*60,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test staff JWT")
	return signed
}
