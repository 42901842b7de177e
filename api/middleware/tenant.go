package middleware

import (
	"context"
	"net/http"

	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

const ctxTenantScope contextKey = "tenant_scope"

// TenantScopeFromContext returns the request's chat store scope, or nil when
// the tenant middleware did not run.
func TenantScopeFromContext(ctx context.Context) *tenant.Scope {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTenantScope).(*tenant.Scope); ok {
		return v
	}
	return nil
}

// WithTenantScope injects a scope directly; used by handler tests.
func WithTenantScope(ctx context.Context, scope *tenant.Scope) context.Context {
	return context.WithValue(ctx, ctxTenantScope, scope)
}

// TenantScope attaches a lazy chat store scope for the authenticated account
// and guarantees its teardown when the request finishes, even on panic.
func TenantScope(resolver tenant.ChatUUIDResolver, provisioner *tenant.Provisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := tenant.NewScope(AccountIDFromContext(r.Context()), resolver, provisioner)
			defer func() {
				if err := scope.Close(); err != nil && logg != nil {
					logg.Error(r.Context(), "tenant.scope.close", err)
				}
			}()

			ctx := WithTenantScope(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
