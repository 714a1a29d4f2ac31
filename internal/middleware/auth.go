package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"provider-booking-api/internal/auth"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

// Auth requires a Bearer access token and stores its user id in the
// request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// token from Authorization: Bearer <jwt>
			raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Token not provided")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func WithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

// UserID returns the authenticated user, or 0 outside Auth.
func UserID(ctx context.Context) int64 {
	uid, _ := ctx.Value(UserIDKey).(int64)
	return uid
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
