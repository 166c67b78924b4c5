package auth

import "context"

// contextKey is a private type so this package's context keys cannot
// collide with keys from other packages.
type contextKey string

const (
	userContextKey  contextKey = "auth_user"
	tokenContextKey contextKey = "auth_token"
)

// NewContextWithSession binds the authenticated user and the raw token
// string that proved their identity to the context. The token is kept so
// logout can remove exactly the session the request rode in on.
func NewContextWithSession(ctx context.Context, user *User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

// TokenFromContext returns the raw token string of the current session,
// if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}
