package dtos

import (
	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/shopspring/decimal"
)

type CreateUnitRequest struct {
	ID         *uuid.UUID      `json:"id,omitempty"`
	ProjectID  uuid.UUID       `json:"project_id" validate:"required"`
	TenantID   string          `json:"tenant_id" validate:"required,max=64"`
	UnitNumber string          `json:"unit_number" validate:"required,max=50"`
	TowerName  *string         `json:"tower_name,omitempty" validate:"omitempty,max=100"`
	Price      decimal.Decimal `json:"price" validate:"gt=0,lt=1000000000000"`
}

// UpdateUnitRequest edits catalogue fields only. Nil fields are left as they are.
type UpdateUnitRequest struct {
	UnitNumber *string          `json:"unit_number,omitempty" validate:"omitempty,max=50"`
	TowerName  *string          `json:"tower_name,omitempty" validate:"omitempty,max=100"`
	Price      *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gt=0,lt=1000000000000"`
}

type ListUnitsResponse struct {
	Results []*models.Unit `json:"results"`
	Total   int            `json:"total"`
}
