package controllers

import (
	"net/http"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

type UnitController struct {
	unitRegistry *services.UnitRegistry
}

func NewUnitController(r *services.UnitRegistry) *UnitController {
	return &UnitController{unitRegistry: r}
}

// GET /api/v1/units?project_id=
func (c *UnitController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	projectID, err := optionalUUIDQuery(r, "project_id")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	resp, err := c.unitRegistry.ListUnits(r.Context(), projectID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/units/{id}
func (c *UnitController) GetUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := c.unitRegistry.GetUnit(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/admin/units
func (c *UnitController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := c.unitRegistry.CreateUnit(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.Logger.WithField("unit_id", u.ID).Info("Unit created")
	utils.RespondWithJSON(w, http.StatusCreated, u)
}

// PATCH /api/v1/admin/units/{id}
func (c *UnitController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := c.unitRegistry.UpdateUnit(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/admin/units/{id}/sold
func (c *UnitController) MarkSoldHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := c.unitRegistry.MarkSold(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}
