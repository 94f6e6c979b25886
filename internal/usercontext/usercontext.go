package usercontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Principal is the authenticated user a request acts on behalf of.
type Principal struct {
	UserID snowflake.ID
	Email  string
	Role   string
}

// UserContextKey is the request context key for the authenticated principal.
type UserContextKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, UserContextKey{}, p)
}

// PrincipalFromContext returns the principal from context, if set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(UserContextKey{}).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, false
	}
	return p, true
}

// UserIDFromContext returns the authenticated user id, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}

// RecordedBy returns the id to stamp on records written by the current
// user, or nil for system writes.
func RecordedBy(ctx context.Context) *snowflake.ID {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}

// RoleFromContext returns the upper-cased role of the current user.
func RoleFromContext(ctx context.Context) string {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(p.Role))
}
