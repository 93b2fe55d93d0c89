package controllers

import (
	"net/http"

	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BottleAmigo-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores the request path depends on.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BottleAmigo-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["db"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(r.Context(), "health.db", err)
				}
			} else {
				checks["db"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(r.Context(), "health.redis", err)
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": map[bool]string{true: "ready", false: "degraded"}[healthy],
			"checks": checks,
		})
	}
}
