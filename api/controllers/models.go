package controllers

import (
	"context"
	"net/http"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/api/validators"
	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

// ModelSessions is the session surface the model endpoints need.
type ModelSessions interface {
	Get(ctx context.Context, sessionID string) (*session.Record, error)
	SetModel(ctx context.Context, sessionID, model string) error
}

// ModelWarmer preloads a model into the runtime before it is selected.
type ModelWarmer interface {
	Warmup(ctx context.Context, model string) error
}

type selectModelBody struct {
	Model string `json:"model" validate:"required"`
}

// ModelsList returns the catalog entries visible to the caller's role plus
// the session's current selection.
func ModelsList(cat *catalog.Catalog, sessions ModelSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "model catalog unavailable"))
			return
		}

		role := middleware.RoleFromContext(r.Context())
		visible := cat.Visible(role)
		names := make([]string, 0, len(visible))
		for _, m := range visible {
			names = append(names, m.Name)
		}

		selected := ""
		if sessions != nil {
			if record, err := sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context())); err == nil {
				selected = record.SelectedModel
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"models":         names,
			"selected_model": selected,
		})
	}
}

// ModelSelect switches the session's active model. The choice is checked
// against the role-filtered catalog and warmed in the runtime before the
// session record is updated, so a selection that lands is ready to serve.
func ModelSelect(cat *catalog.Catalog, sessions ModelSessions, warmer ModelWarmer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "model catalog unavailable"))
			return
		}

		var body selectModelBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := middleware.RoleFromContext(r.Context())
		if !cat.Allowed(role, body.Model) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "model not available").
				WithDetails(map[string]any{"model": body.Model}))
			return
		}

		if warmer != nil {
			if err := warmer.Warmup(r.Context(), body.Model); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "warming model"))
				return
			}
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := sessions.SetModel(r.Context(), sessionID, body.Model); err != nil {
			if err == session.ErrNoSession {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating session"))
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "model", body.Model), "models.selected")
		}
		responses.WriteSuccess(w, map[string]string{"selected_model": body.Model})
	}
}
