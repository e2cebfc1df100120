package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

type contextKey string

const OccupantContextKey contextKey = "occupant"

// RequireAuth resolves the session cookie to an occupant and stores it on
// the request context.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			occupant, err := authService.GetCurrentOccupant(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OccupantContextKey, occupant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		occupant := GetOccupant(r.Context())
		if occupant.Role != models.RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APITokenAuth authenticates the external assignment engine with a bearer
// token. The token's creator becomes the request occupant.
func APITokenAuth(tokenRepo repository.APITokenRepository, occupantRepo repository.OccupantRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			tokenHash := repository.HashToken(tokenString)

			token, err := tokenRepo.FindByTokenHash(r.Context(), tokenHash)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			occupant, err := occupantRepo.FindByID(r.Context(), token.CreatedByOccupantID)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OccupantContextKey, occupant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOccupant(ctx context.Context) models.Occupant {
	occupant, _ := ctx.Value(OccupantContextKey).(models.Occupant)
	return occupant
}
