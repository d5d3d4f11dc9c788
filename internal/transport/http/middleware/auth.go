package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/site-api/internal/domain"
	jwtinfra "github.com/site-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// SessionChecker rejects bearers whose session was logged out or revoked.
type SessionChecker interface {
	CheckActive(ctx context.Context, sessionID string) error
}

// Auth returns middleware that validates the Bearer JWT, checks that its session
// is still enabled and injects the claims into the request context.
func Auth(provider tokenVerifier, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if sessions != nil {
				err := sessions.CheckActive(r.Context(), claims.SessionID)
				if errors.Is(err, domain.ErrUnauthorized) {
					writeJSONError(w, http.StatusUnauthorized, "session expired")
					return
				}
				if err != nil {
					slog.ErrorContext(r.Context(), "session lookup failed",
						"request_id", chimiddleware.GetReqID(r.Context()), "error", err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
