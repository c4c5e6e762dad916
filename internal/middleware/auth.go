package middleware

import (
	"context"
	"net/http"

	"github.com/ukydev/gps-telemetry-collector/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const ClaimsContextKey contextKey = "claims"

// AuthMiddleware protects the job inspection endpoints with JWT tokens.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and attaches the claims to the
// request context. Health and login stay open.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func shouldSkipAuth(path string) bool {
	return path == "/health" || path == "/api/v1/login"
}
