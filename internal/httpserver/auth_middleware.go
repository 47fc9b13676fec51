package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// viewerID is the current user's id, or zero for an anonymous request.
func viewerID(r *http.Request) int64 {
	if u := CurrentUser(r); u != nil {
		return u.ID
	}
	return 0
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// Authenticator resolves bearer tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

var _ Authenticator = (*service.AuthService)(nil)

// AuthMiddleware requires a valid bearer token. A missing token is 401, a
// token that does not resolve to a user is 403.
func AuthMiddleware(auth Authenticator, errs errorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Access token required")
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusForbidden
				if domain.KindOf(err) == "" {
					status = http.StatusInternalServerError
				}
				errs.writeStatus(w, r, status, "authenticate", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if user, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
