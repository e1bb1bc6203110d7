package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/delivery/http/response"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware renders every error returned by a handler.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
// Internal error text is logged, never written to the client.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.LoggerFromContext(c.Request().Context(), m.logger)

	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logFailure(c, logger, err)
		}
		_ = response.AppError(c, appErr)

		return
	}

	if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok {
		_ = response.Error(c, httpErr.Code, httpErrorCode(httpErr.Code), httpErrorMessage(httpErr), "")

		return
	}

	m.logFailure(c, logger, err)
	_ = response.InternalServerError(c)
}

func (m *ErrorMiddleware) logFailure(c echo.Context, logger *slog.Logger, err error) {
	logger.Error("Unhandled error",
		slog.String("error", fmt.Sprintf("%+v", err)),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return domainerrors.ErrPayloadTooLarge.ErrorCode()
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "HTTP_ERROR"
	}
}

// httpErrorMessage only trusts string messages; anything else could carry internal detail.
func httpErrorMessage(httpErr *echo.HTTPError) string {
	if msg, ok := httpErr.Message.(string); ok && msg != "" && httpErr.Code < http.StatusInternalServerError {
		return msg
	}

	return http.StatusText(httpErr.Code)
}
