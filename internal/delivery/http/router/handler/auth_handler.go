package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/delivery/http/response"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"
	"postly/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC    usecase.AuthUsecase
	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AuthHandler serves signup, signin and the current account.
type AuthHandler struct {
	authUC    usecase.AuthUsecase
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:    params.AuthUC,
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// Signup handles the registration request.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	birthday, ok := parseBirthday(req.Birthday)
	if !ok {
		return domainerrors.ErrValidationFailed.WithDetails("birthday: must be a date formatted as YYYY-MM-DD")
	}

	user, err := h.authUC.Signup(c.Request().Context(), &usecase.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthday:  birthday,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserResponse(user), "User registered successfully")
}

// Signin exchanges credentials for an access token.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signin input")
	}
	if req.Email == "" {
		req.Email = req.Username
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.Signin(c.Request().Context(), &usecase.SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, &TokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   int64(output.ExpiresIn.Seconds()),
	}, "Signin successful")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.accountUC.Me(c.Request().Context(), current.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "")
}

// DeleteMe removes the authenticated user together with their posts and media.
func (h *AuthHandler) DeleteMe(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.accountUC.DeleteAccount(c.Request().Context(), current.ID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// currentUser returns the user stored by the auth middleware.
func currentUser(c echo.Context) (*entity.User, error) {
	user, ok := deliverycontext.CurrentUser(c)
	if !ok {
		return nil, domainerrors.ErrUnauthorized
	}

	return user, nil
}
