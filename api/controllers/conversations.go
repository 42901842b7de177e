package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/api/responses"
	"github.com/nmorales-dev/localchat-backend/api/validators"
	"github.com/nmorales-dev/localchat-backend/internal/chat"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"gorm.io/gorm"
)

type createConversationBody struct {
	Title string `json:"title" validate:"max=200"`
}

type renameConversationBody struct {
	Title string `json:"title" validate:"required,max=200"`
}

// tenantConn opens the caller's chat store via the request scope. It writes
// the error response itself so handlers can bail with a plain return.
func tenantConn(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*gorm.DB, bool) {
	scope := middleware.TenantScopeFromContext(r.Context())
	if scope == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat store unavailable"))
		return nil, false
	}
	conn, err := scope.Chat(r.Context())
	if err != nil {
		if errors.Is(err, tenant.ErrNoIdentity) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return nil, false
		}
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "history unavailable"))
		return nil, false
	}
	return conn, true
}

// ConversationsList returns the caller's threads, newest first. Accepts an
// optional limit query parameter.
func ConversationsList(repo *chat.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		list, err := repo.ListConversations(r.Context(), conn, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing conversations"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ConversationCreate starts a new thread, optionally titled.
func ConversationCreate(repo *chat.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createConversationBody
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		convo, err := repo.CreateConversation(r.Context(), conn, validators.SanitizeString(body.Title, 200))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating conversation"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, convo)
	}
}

// ConversationRename retitles an existing thread.
func ConversationRename(repo *chat.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body renameConversationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		title := validators.SanitizeString(body.Title, 200)
		if title == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "title is required"))
			return
		}

		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		id := chi.URLParam(r, "conversationId")
		if _, err := repo.GetConversation(r.Context(), conn, id); err != nil {
			responses.WriteError(r.Context(), logg, w, conversationLoadError(err))
			return
		}
		if err := repo.RenameConversation(r.Context(), conn, id, title); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "renaming conversation"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id, "title": title})
	}
}

// ConversationDelete removes a thread and its messages.
func ConversationDelete(repo *chat.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		id := chi.URLParam(r, "conversationId")
		if _, err := repo.GetConversation(r.Context(), conn, id); err != nil {
			responses.WriteError(r.Context(), logg, w, conversationLoadError(err))
			return
		}
		if err := repo.DeleteConversation(r.Context(), conn, id); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting conversation"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id, "status": "deleted"})
	}
}

// ConversationMessages returns the full thread history, oldest first.
func ConversationMessages(repo *chat.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, ok := tenantConn(w, r, logg)
		if !ok {
			return
		}

		id := chi.URLParam(r, "conversationId")
		if _, err := repo.GetConversation(r.Context(), conn, id); err != nil {
			responses.WriteError(r.Context(), logg, w, conversationLoadError(err))
			return
		}
		history, err := repo.History(r.Context(), conn, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading history"))
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func conversationLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading conversation")
}
