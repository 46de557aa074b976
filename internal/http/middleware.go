package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// RequireUser resolves the caller from the X-User-ID header. The header is
// set by the fronting proxy after authentication; requests without it are
// rejected.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			slog.InfoContext(r.Context(), "Rejected unauthenticated request",
				"method", r.Method, "url", r.URL.Path)
			respondError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the caller's user ID from the request context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
