package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

// visibleToCaller reports whether a record of tenantID may be seen by the
// caller. Unscoped callers (internal jobs, the CLI) see everything.
func visibleToCaller(ctx context.Context, tenantID string) bool {
	scope := utils.TenantIDFromContext(ctx)
	return scope == "" || scope == tenantID
}

// checkTenantForWrite rejects commands naming a tenant other than the caller's.
func checkTenantForWrite(ctx context.Context, tenantID string) error {
	if !visibleToCaller(ctx, tenantID) {
		return fieldError("tenant_id", "validation_tenant", "tenant_id does not match the caller's tenant")
	}
	return nil
}

// scopedTenant picks the tenant filter for list queries; a scoped caller can
// never widen it.
func scopedTenant(ctx context.Context, requested string) string {
	if scope := utils.TenantIDFromContext(ctx); scope != "" {
		return scope
	}
	return requested
}

// actorID returns the staff member issuing the command, when known.
func actorID(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(utils.StaffIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &id
}
