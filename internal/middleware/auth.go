package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/civic-engine/internal/auth"
	"github.com/hongminglow/civic-engine/internal/http/respond"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Authenticate verifies the Bearer token and stores the caller's user ID in
// the request context. The engine behind it only ever sees an
// already-authenticated user ID.
func Authenticate(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}
		userID, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// UserID returns the authenticated user ID stored by Authenticate.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
