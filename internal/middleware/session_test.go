package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/middleware"
)

// mockResolver is a hand-written test double for middleware.SessionResolver.
type mockResolver struct {
	resolve func(ctx context.Context, token string) (domain.User, error)
}

func (m *mockResolver) ResolveSession(ctx context.Context, token string) (domain.User, error) {
	return m.resolve(ctx, token)
}

var _ middleware.SessionResolver = (*mockResolver)(nil)

// whoAmI writes the resolved username, or "anonymous".
var whoAmI = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		_, _ = io.WriteString(w, "anonymous")
		return
	}
	_, _ = io.WriteString(w, u.Username)
})

func serveWithCookie(t *testing.T, resolver middleware.SessionResolver, cookie *http.Cookie) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := middleware.NewSessionHandler(resolver, "rental_session", log)(whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestSessionHandler_ValidCookie(t *testing.T) {
	var gotToken string
	resolver := &mockResolver{resolve: func(_ context.Context, token string) (domain.User, error) {
		gotToken = token
		return domain.User{ID: "user-1", Username: "admin", Role: domain.RoleAdmin}, nil
	}}

	body := serveWithCookie(t, resolver, &http.Cookie{Name: "rental_session", Value: "tok"})

	assert.Equal(t, "admin", body)
	assert.Equal(t, "tok", gotToken)
}

func TestSessionHandler_NoCookie(t *testing.T) {
	resolver := &mockResolver{resolve: func(context.Context, string) (domain.User, error) {
		t.Fatal("resolver must not be called without a cookie")
		return domain.User{}, nil
	}}

	assert.Equal(t, "anonymous", serveWithCookie(t, resolver, nil))
}

func TestSessionHandler_InvalidOrFailingLookupIsAnonymous(t *testing.T) {
	for name, err := range map[string]error{
		"rejected": domain.ErrUnauthenticated,
		"store":    errors.New("connection reset"),
	} {
		t.Run(name, func(t *testing.T) {
			resolver := &mockResolver{resolve: func(context.Context, string) (domain.User, error) {
				return domain.User{}, err
			}}

			body := serveWithCookie(t, resolver, &http.Cookie{Name: "rental_session", Value: "tok"})

			assert.Equal(t, "anonymous", body)
		})
	}
}
