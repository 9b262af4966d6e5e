package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/madrasati/schoolstore-backend/api/responses"
	"github.com/madrasati/schoolstore-backend/pkg/config"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SchoolStore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SchoolStore-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{"status": "ready"}
		healthy := true

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				status["database"] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "health.database", err)
				}
			} else {
				status["database"] = "ok"
			}
		}

		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				status["redis"] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "health.redis", err)
				}
			} else {
				status["redis"] = "ok"
			}
		}

		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
