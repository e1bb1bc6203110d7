// Package middleware holds the echo middleware specific to the HTTP API.
package middleware

import (
	"net/http"
	"strings"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/delivery/http/response"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"
	"postly/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerScheme = "Bearer"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
}

// AuthMiddleware guards routes that need an authenticated user.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{authUC: params.AuthUC}
}

// Authenticate resolves the bearer token to a live user and stores it on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		user, err := m.authUC.Authenticate(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUnauthorized) {
				return unauthorized(c)
			}

			return err
		}

		deliverycontext.SetUser(c, user)

		return next(c)
	}
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, bearerScheme)

	return response.Error(c, http.StatusUnauthorized,
		domainerrors.ErrUnauthorized.ErrorCode(),
		domainerrors.ErrUnauthorized.Message(),
		"",
	)
}
