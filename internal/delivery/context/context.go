// Package context carries per-request values from the HTTP middleware down to
// handlers, use cases and repositories.
package context

import (
	"context"
	"log/slog"

	"postly/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRequestID holds the request id on context.Context.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger holds the request-scoped logger on context.Context.
	KeyLogger ContextKey = "logger"

	// KeyUser holds the authenticated user on echo.Context.
	KeyUser ContextKey = "user"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// WithRequest binds the request id to ctx together with a logger tagged with it.
func WithRequest(ctx context.Context, requestID string, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, KeyRequestID, requestID)

	return context.WithValue(ctx, KeyLogger, logger.With(slog.String("request_id", requestID)))
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRequestID).(string); ok {
		return id
	}

	return ""
}

// LoggerFromContext returns the request-scoped logger, or fallback outside a request.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// SetUser stores the authenticated user on the echo context. The request-scoped
// logger, when present, is tagged with the user id so every later log line of the
// request carries it.
func SetUser(c echo.Context, user *entity.User) {
	c.Set(string(KeyUser), user)

	req := c.Request()
	if logger := LoggerFromContext(req.Context(), nil); logger != nil {
		tagged := logger.With(slog.String("user_id", user.ID.String()))
		c.SetRequest(req.WithContext(context.WithValue(req.Context(), KeyLogger, tagged)))
	}
}

// CurrentUser returns the user stored by SetUser.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(string(KeyUser)).(*entity.User)

	return user, ok && user != nil
}
