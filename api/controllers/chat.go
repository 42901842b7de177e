package controllers

import (
	"net/http"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/api/validators"
	"github.com/nmorales-dev/localchat-backend/internal/chat"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

type submitTurnBody struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Message        string `json:"message" validate:"required"`
}

// ChatSubmit runs one conversation turn against the session's selected model.
func ChatSubmit(svc *chat.Service, sessions session.Checker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		var body submitTurnBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			if err == session.ErrNoSession {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading session"))
			return
		}
		if record.SelectedModel == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "no model selected"))
			return
		}

		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.SubmitTurn(r.Context(), conn, body.ConversationID, body.Message, record.SelectedModel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"conversation_id": body.ConversationID,
			"reply":           result.Reply,
			"empty":           result.Empty,
			"model":           record.SelectedModel,
		})
	}
}
