package middleware

import (
	"context"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxUsername  contextKey = "username"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxIDHolder  contextKey = "identity_holder"
)

// identityHolder lets middleware mounted outside the auth layer observe who
// the request was eventually authenticated as. Context values only flow
// inward, so the outer layer plants a mutable holder and the auth middleware
// fills it in.
type identityHolder struct {
	accountID int64
}

func withIdentityHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxIDHolder, &identityHolder{})
}

func holderAccountID(ctx context.Context) int64 {
	if h, ok := ctx.Value(ctxIDHolder).(*identityHolder); ok {
		return h.accountID
	}
	return 0
}

func AccountIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxAccountID).(int64); ok {
		return v
	}
	return 0
}

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity seeds the request context with the authenticated caller. Used
// by the auth middleware and by handler tests.
func WithIdentity(ctx context.Context, accountID int64, username string, role enums.Role, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if h, ok := ctx.Value(ctxIDHolder).(*identityHolder); ok {
		h.accountID = accountID
	}
	ctx = context.WithValue(ctx, ctxAccountID, accountID)
	ctx = context.WithValue(ctx, ctxUsername, username)
	ctx = context.WithValue(ctx, ctxRole, role)
	return context.WithValue(ctx, ctxSessionID, sessionID)
}
