package middleware

import (
	"context"
	"net/http"

	"github.com/nmorales-dev/localchat-backend/internal/audit"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
)

type errorRecorder interface {
	RecordError(ctx context.Context, dto audit.ErrorEventDTO)
}

// ErrorAudit captures server failures (status 500 and above) into the
// diagnostics store. Sits at the outermost layer so it also sees responses
// written by the recoverer.
func ErrorAudit(recorder errorRecorder, resolver tenant.ChatUUIDResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Auth runs further in and derives its own context, which this
			// layer never sees. The holder bridges the gap.
			ctx := withIdentityHolder(r.Context())
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status < http.StatusInternalServerError || recorder == nil {
				return
			}

			var accountUUID *string
			if resolver != nil {
				if accountID := holderAccountID(ctx); accountID > 0 {
					if chatUUID, err := resolver.ChatUUID(ctx, accountID); err == nil {
						accountUUID = &chatUUID
					}
				}
			}

			recorder.RecordError(ctx, audit.ErrorEventDTO{
				AccountUUID: accountUUID,
				Method:      r.Method,
				URL:         r.URL.Path,
				IPAddress:   ClientIP(r),
				StatusCode:  rec.status,
				Message:     http.StatusText(rec.status),
			})
		})
	}
}
