package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/pkg/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthMiddleware validates the JWT and stores its claims on the request context
func AuthMiddleware(validator TokenValidator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// AdminMiddleware requires a valid token carrying the admin role
func AdminMiddleware(validator TokenValidator) func(http.HandlerFunc) http.HandlerFunc {
	authenticate := AuthMiddleware(validator)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return authenticate(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.IsAdmin() {
				respondError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// actorFromRequest builds the warehouse context of the authenticated caller
func actorFromRequest(r *http.Request) domain.WarehouseContext {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return domain.WarehouseContext{}
	}
	return domain.WarehouseContext{ActorID: claims.UserID, WarehouseID: claims.WarehouseID}
}
