package auth

import (
	"context"

	"github.com/eventboard/eventboard/internal/store"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithCurrentUser binds the resolved user into the given context. The value
// is immutable and request scoped; there is no mutable global or
// thread-local equivalent.
func WithCurrentUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// CurrentUser finds the user from the context.
func CurrentUser(ctx context.Context) (*store.User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*store.User)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context.
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context.
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
