package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/api/validators"
	"github.com/nmorales-dev/localchat-backend/internal/accounts"
	"github.com/nmorales-dev/localchat-backend/internal/auth"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProfileAccounts is the account surface the profile endpoints need.
type ProfileAccounts interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateProfile(ctx context.Context, id int64, dto accounts.UpdateProfileDTO) error
}

type updateProfileBody struct {
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Birthday *string `json:"birthday" validate:"omitempty,max=32"`
	City     *string `json:"city" validate:"omitempty,max=100"`
	Country  *string `json:"country" validate:"omitempty,max=100"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ProfileGet returns the caller's account record.
func ProfileGet(repo ProfileAccounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts unavailable"))
			return
		}

		account, err := repo.FindByID(r.Context(), middleware.AccountIDFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "account not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account"))
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// ProfileUpdate applies the optional profile fields and returns the fresh record.
func ProfileUpdate(repo ProfileAccounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts unavailable"))
			return
		}

		var body updateProfileBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID := middleware.AccountIDFromContext(r.Context())
		err := repo.UpdateProfile(r.Context(), accountID, accounts.UpdateProfileDTO{
			Phone:    body.Phone,
			Birthday: body.Birthday,
			City:     body.City,
			Country:  body.Country,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile"))
			return
		}

		account, err := repo.FindByID(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account"))
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// PasswordChange verifies the current password before storing the new one.
func PasswordChange(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body changePasswordBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID := middleware.AccountIDFromContext(r.Context())
		if err := svc.ChangePassword(r.Context(), accountID, body.CurrentPassword, body.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "password changed"})
	}
}
