package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ihadi/timetrack-be/internal/auth"
	"github.com/ihadi/timetrack-be/internal/http/respond"
)

type ctxKey string

const userIDKey ctxKey = "uid"

// RequireAuth resolves the Authorization bearer token into a technician id
// in the request context. Requests without a valid token get a 401.
func RequireAuth(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID pulls the authenticated technician id out of the context. The
// second return is false outside RequireAuth-wrapped handlers.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID stamps a technician id on a context. Intended for tests.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
