package controllers

import (
	"context"
	"net/http"

	"github.com/techb2bnew/coconut-delivery/api/responses"
	"github.com/techb2bnew/coconut-delivery/pkg/config"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// Pinger is the health-check surface of a backing service.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Coconut-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database responds. Redis is
// optional; a failing cache degrades reads but does not fail readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Coconut-Env", cfg.App.Env)

		if db == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database not wired"))
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}

		cacheStatus := "disabled"
		if cache != nil {
			cacheStatus = "ok"
			if err := cache.Ping(r.Context()); err != nil {
				cacheStatus = "degraded"
				if logg != nil {
					logg.Warn(r.Context(), "redis unreachable, rule cache degraded")
				}
			}
		}

		responses.WriteSuccess(w, map[string]string{
			"status": "ready",
			"cache":  cacheStatus,
		})
	}
}
