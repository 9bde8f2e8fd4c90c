// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/utils"
)

type contextKey string

const (
	requestIDContextKey contextKey = "requestID"
	userContextKey      contextKey = "user"
)

// ContextualLoggerMiddleware creates a logger with a requestID for each request.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var userKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// UserParamMiddleware validates the {user} URL parameter, enriches the
// contextual logger with it, and stores it in the request context.
func UserParamMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		if user == "" || !userKeyPattern.MatchString(user) {
			utils.SendJSONError(w, "invalid user key", http.StatusBadRequest)
			return
		}

		enrichedLogger := logger.FromContext(r.Context()).With(slog.String("user", user))
		ctx := logger.ToContext(r.Context(), enrichedLogger)
		ctx = context.WithValue(ctx, userContextKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the validated user key placed by UserParamMiddleware.
func GetUserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userContextKey).(string)
	return user, ok && user != ""
}
