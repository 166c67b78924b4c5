package auth

import (
	"context"
	"net/http"
)

// TokenHeader is the request and response header carrying the session
// token.
const TokenHeader = "x-auth"

// UserFinder is the single operation the middleware needs from the user
// store.
type UserFinder interface {
	FindByToken(ctx context.Context, token string) (*User, error)
}

// Authenticate returns middleware that resolves the x-auth header to a
// user and binds the session to the request context. A missing or
// unresolvable token halts the request with a bare 401; the next handler
// is never invoked. Routes that do not require a session simply are not
// wrapped.
func Authenticate(store UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			user, err := store.FindByToken(r.Context(), token)
			if err != nil {
				// Which check failed stays server-side; the client only
				// sees the status.
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithSession(r.Context(), user, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
