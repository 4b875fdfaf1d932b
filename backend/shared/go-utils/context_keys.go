// go-utils/context_keys.go

package utils

import "context"

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyTenantID stores the tenant the caller is scoped to.
const CtxKeyTenantID ctxKey = "tenantID"

// CtxKeyStaffID stores the staff member (agent, manager, admin) issuing the command.
const CtxKeyStaffID ctxKey = "staffID"

func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxKeyTenantID, tenantID)
}

// TenantIDFromContext returns the scoped tenant, or "" when the caller is unscoped.
func TenantIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyTenantID).(string)
	return v
}

func WithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, CtxKeyStaffID, staffID)
}

func StaffIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyStaffID).(string)
	return v
}
