// go-models/unit.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "AVAILABLE"
	UnitStatusHold      UnitStatus = "HOLD"
	UnitStatusBooked    UnitStatus = "BOOKED"
	UnitStatusSold      UnitStatus = "SOLD"
)

var UnitStatuses = []UnitStatus{
	UnitStatusAvailable,
	UnitStatusHold,
	UnitStatusBooked,
	UnitStatusSold,
}

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusHold, UnitStatusBooked, UnitStatusSold:
		return true
	}
	return false
}

// Unit is a sellable property item that belongs to a project of one tenant.
// Once SOLD the status is only ever changed by an administrative path.
type Unit struct {
	Versioned

	ID         uuid.UUID       `json:"id"`
	ProjectID  uuid.UUID       `json:"project_id"`
	TenantID   string          `json:"tenant_id"`
	UnitNumber string          `json:"unit_number"`
	TowerName  *string         `json:"tower_name,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Status     UnitStatus      `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (u *Unit) GetID() string {
	return u.ID.String()
}
