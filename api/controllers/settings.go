package controllers

import (
	"net/http"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

// SettingsGet returns the settings view: the account basics, the current
// model selection, and the models the caller may switch to. Restricted
// accounts never reach this handler; the router rejects them up front.
func SettingsGet(cat *catalog.Catalog, sessions ModelSessions, accounts ProfileAccounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil || accounts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings unavailable"))
			return
		}

		account, err := accounts.FindByID(r.Context(), middleware.AccountIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account"))
			return
		}

		selected := ""
		if sessions != nil {
			if record, err := sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context())); err == nil {
				selected = record.SelectedModel
			}
		}

		visible := cat.Visible(account.Role)
		names := make([]string, 0, len(visible))
		for _, m := range visible {
			names = append(names, m.Name)
		}

		responses.WriteSuccess(w, map[string]any{
			"username":       account.Username,
			"email":          account.Email,
			"role":           account.Role,
			"selected_model": selected,
			"models":         names,
		})
	}
}
