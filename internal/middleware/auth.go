package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sting421/Navigram-API/internal/models"
)

type contextKey string

const UserIDKey contextKey = "userID"

// JWTAuth validates the Bearer token and puts the user id in the request
// context.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userIDFromHeader(r, jwtSecret)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or missing token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth resolves the user id when a valid token is present and
// lets the request through anonymously otherwise. Discovery endpoints use
// this so anonymous viewers still see public content.
func OptionalJWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := userIDFromHeader(r, jwtSecret); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserLookup resolves an authenticated user id to the current account
// record.
type UserLookup func(ctx context.Context, userID string) (*models.User, error)

// RequireCapability gates a route on the caller's role. It re-reads the
// account on every request so role changes and suspensions take effect
// without waiting for the token to expire.
func RequireCapability(lookup UserLookup, capability models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authentication required"))
				return
			}
			user, err := lookup(r.Context(), userID)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unknown account"))
				return
			}
			if !user.Enabled {
				writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Account is disabled"))
				return
			}
			if !models.HasCapability(user.Role, capability) {
				writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userIDFromHeader(r *http.Request, jwtSecret string) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetUserID extracts the authenticated user id from context. Empty means
// anonymous.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
