package controllers

import (
	"context"
	"net/http"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

// Pinger is anything the health check can probe: the pgx pool, a redis
// client adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db    Pinger
	cache Pinger
}

// NewHealthController takes the database and an optional cache probe.
func NewHealthController(db Pinger, cache Pinger) *HealthController {
	return &HealthController{db: db, cache: cache}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()

	if err := c.db.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("bookings-service DB unreachable")
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
		return
	}

	resp := dtos.HealthCheckResponse{Status: "OK", Dependencies: map[string]string{"database": "OK"}}
	if c.cache != nil {
		// A cache outage degrades reads but does not take the service down.
		if err := c.cache.Ping(ctx); err != nil {
			utils.Logger.WithError(err).Warn("bookings-service cache unreachable")
			resp.Dependencies["cache"] = "DEGRADED"
		} else {
			resp.Dependencies["cache"] = "OK"
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
