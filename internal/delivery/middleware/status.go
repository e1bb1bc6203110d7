package middleware

import (
	"net/http"

	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"

	"github.com/labstack/echo/v4"
)

// statusOf predicts the status the error handler will render for err.
func statusOf(err error) int {
	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok {
		return appErr.HTTPCode()
	}
	if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok {
		return httpErr.Code
	}

	return http.StatusInternalServerError
}
