package controllers

import (
	"net/http"

	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalChat-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency and reports which ones failed.
// The runtime check covers the model server; a down runtime makes the whole
// service not ready since every turn depends on it.
func HealthReady(cfg *config.Config, logg *logger.Logger, identity, security, admin, redis, runtime db.Pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger db.Pinger
	}{
		{"identity_db", identity},
		{"security_db", security},
		{"admin_db", admin},
		{"redis", redis},
		{"runtime", runtime},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalChat-Env", cfg.App.Env)

		statuses := map[string]string{}
		failed := []string{}
		for _, check := range checks {
			if check.pinger == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.pinger.Ping(r.Context()); err != nil {
				statuses[check.name] = "down"
				failed = append(failed, check.name)
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", check.name), "health.ready.failed", err)
				}
				continue
			}
			statuses[check.name] = "ok"
		}

		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"failed": failed})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statuses)
	}
}
