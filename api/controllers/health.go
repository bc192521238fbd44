package controllers

import (
	"context"
	"net/http"

	"github.com/peptracker/peptracker-backend/api/responses"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

// Pinger is anything that can report backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live", "env": env})
	}
}

// HealthReady checks the store and cache before reporting ready.
func HealthReady(env string, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "env": env})
	}
}
