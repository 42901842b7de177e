package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/api/validators"
	"github.com/nmorales-dev/localchat-backend/internal/admin"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

type updateRoleBody struct {
	Role string `json:"role" validate:"required,oneof=admin user restricted"`
}

// AdminAccountsList returns every account for the admin panel.
func AdminAccountsList(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		rows, err := svc.ListAccounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminAccountRoleUpdate changes the target account's role.
func AdminAccountRoleUpdate(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		targetID, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
		if err != nil || targetID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id"))
			return
		}

		var body updateRoleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.AccountIDFromContext(r.Context())
		row, err := svc.UpdateRole(r.Context(), actorID, targetID, enums.Role(body.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"target_id": targetID,
				"new_role":  body.Role,
			}), "admin.role.updated")
		}
		responses.WriteSuccess(w, row)
	}
}
