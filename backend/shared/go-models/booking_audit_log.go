// go-models/booking_audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditTransition AuditAction = "TRANSITION"
	AuditCascade    AuditAction = "CASCADE_REFUND"
)

// BookingAuditLog records one successful write against a booking. FromStatus is
// nil for the CREATE entry.
type BookingAuditLog struct {
	ID         uuid.UUID        `json:"id"`
	BookingID  uuid.UUID        `json:"booking_id"`
	TenantID   string           `json:"tenant_id"`
	ActorID    *uuid.UUID       `json:"actor_id,omitempty"`
	Action     AuditAction      `json:"action"`
	FromStatus *BookingStatus   `json:"from_status,omitempty"`
	ToStatus   BookingStatus    `json:"to_status"`
	Details    *json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
