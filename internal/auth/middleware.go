package auth

import (
	"context"
	"net/http"
	"strings"

	pkghttp "github.com/solrent/solrent/pkg/http"
)

type contextKey string

// UserContextKey is the request-context key holding the verified TokenClaims.
const UserContextKey contextKey = "user"

// Middleware verifies the Bearer token and stores the claims in the request
// context.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				pkghttp.WriteUnauthorized(w, "Missing or malformed Authorization header")
				return
			}

			claims, err := tm.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose verified claims do not carry role.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}
			if claims.Role != role {
				pkghttp.WriteForbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the verified claims, or nil when the request is
// unauthenticated.
func ClaimsFromContext(ctx context.Context) *TokenClaims {
	claims, _ := ctx.Value(UserContextKey).(*TokenClaims)
	return claims
}
