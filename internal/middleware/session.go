package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pkordes/car-rental/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (domain.User, error)
}

// NewSessionHandler returns a middleware that resolves the session cookie
// named cookieName and stores the user in the request context. Requests
// without a valid session continue anonymously; gating is left to handlers.
func NewSessionHandler(resolver SessionResolver, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := resolver.ResolveSession(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), u))
			case errors.Is(err, domain.ErrUnauthenticated):
				log.DebugContext(r.Context(), "session rejected", "error", err)
			default:
				log.ErrorContext(r.Context(), "session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying u as the caller.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the caller resolved by NewSessionHandler.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}
