package middleware

import (
	"context"

	"multi-tenant-crm/backend/internal/platform/rbac"
)

type contextKey struct{ name string }

var (
	userIDKey = contextKey{"user_id"}
	callerKey = contextKey{"caller"}
)

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// WithCaller returns a context carrying the resolved organization caller.
func WithCaller(ctx context.Context, c rbac.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// GetCaller returns the caller from context and true if set.
func GetCaller(ctx context.Context) (rbac.Caller, bool) {
	v, ok := ctx.Value(callerKey).(rbac.Caller)
	return v, ok
}
