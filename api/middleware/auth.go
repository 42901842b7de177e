package middleware

import (
	"net/http"
	"strings"

	"github.com/nmorales-dev/localchat-backend/api/responses"
	pkgAuth "github.com/nmorales-dev/localchat-backend/pkg/auth"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

// Auth validates a bearer token against the server-side session record and
// seeds the request context with the caller identity. The role in the session
// record is authoritative; the token copy is carried for observability only.
// Revoking the record (logout) invalidates the token before its exp.
func Auth(cfg config.JWTConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			record, err := sessions.Get(r.Context(), claims.ID)
			if err != nil {
				if err == session.ErrNoSession {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := WithIdentity(r.Context(), record.AccountID, record.Username, record.Role, claims.ID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"account_id": record.AccountID,
					"actor_role": string(record.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
