package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/delivery/http/response"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/service"
	mockService "postly/internal/mocks/service"
	mockUsecase "postly/internal/mocks/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def", token: "abc.def", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "abc.def", ok: false},
		{header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAuthMiddleware_TagsRequestLoggerWithUser(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com"}
	authUC := mockUsecase.NewMockAuthUsecase(t)
	authUC.On("Authenticate", mock.Anything, "good").Return(user, nil)
	mw := NewAuthMiddleware(AuthMiddlewareParams{AuthUC: authUC})

	var logs bytes.Buffer
	base := slog.New(slog.NewTextHandler(&logs, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(deliverycontext.WithRequest(req.Context(), "req-1", base))
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw.Authenticate(func(c echo.Context) error {
		deliverycontext.LoggerFromContext(c.Request().Context(), nil).Info("handled")

		return nil
	})(c)

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "request_id=req-1")
	assert.Contains(t, logs.String(), "user_id="+user.ID.String())
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com"}

	tests := []struct {
		name       string
		header     string
		setup      func(authUC *mockUsecase.MockAuthUsecase)
		wantStatus int
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "rejected token",
			header: "Bearer expired",
			setup: func(authUC *mockUsecase.MockAuthUsecase) {
				authUC.On("Authenticate", mock.Anything, "expired").
					Return(nil, errors.Wrap(domainerrors.ErrUnauthorized, "verify token"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "deleted user",
			header: "Bearer orphan",
			setup: func(authUC *mockUsecase.MockAuthUsecase) {
				authUC.On("Authenticate", mock.Anything, "orphan").
					Return(nil, domainerrors.ErrUnauthorized.WrapMessage("user no longer exists"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(authUC *mockUsecase.MockAuthUsecase) {
				authUC.On("Authenticate", mock.Anything, "good").Return(user, nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authUC := mockUsecase.NewMockAuthUsecase(t)
			if tt.setup != nil {
				tt.setup(authUC)
			}
			mw := NewAuthMiddleware(AuthMiddlewareParams{AuthUC: authUC})

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := mw.Authenticate(func(c echo.Context) error {
				current, ok := deliverycontext.CurrentUser(c)
				require.True(t, ok)
				assert.Equal(t, user, current)

				return c.NoContent(http.StatusNoContent)
			})(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
				assert.Equal(t, "UNAUTHORIZED", decode(t, rec).Error.Code)
			}
		})
	}
}

func TestAuthMiddleware_StorageFailurePropagates(t *testing.T) {
	authUC := mockUsecase.NewMockAuthUsecase(t)
	authUC.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("connection refused"))
	mw := NewAuthMiddleware(AuthMiddlewareParams{AuthUC: authUC})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw.Authenticate(func(echo.Context) error {
		t.Fatal("handler must not run")

		return nil
	})(c)

	assert.EqualError(t, err, "connection refused")
}

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{
			name:       "domain error",
			err:        errors.Wrap(domainerrors.ErrPostNotFoundOrForbidden, "update post"),
			wantStatus: http.StatusNotFound,
			wantCode:   "POST_NOT_FOUND_OR_FORBIDDEN",
		},
		{
			name:        "domain error with details",
			err:         domainerrors.ErrPayloadTooLarge.WithDetails("maximum upload size is 10.0 MB"),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "PAYLOAD_TOO_LARGE",
			wantDetails: "maximum upload size is 10.0 MB",
		},
		{
			name:       "storage failure hides cause",
			err:        errors.Wrap(domainerrors.ErrStorageFailure, "open /var/data/secret.db: permission denied"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORAGE_FAILURE",
		},
		{
			name:       "echo body limit",
			err:        echo.ErrStatusRequestEntityTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
		{
			name:       "echo error with non string message",
			err:        echo.NewHTTPError(http.StatusBadRequest, map[string]int{"line": 3}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "HTTP_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("pq: relation \"users\" does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			mw.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.NotContains(t, rec.Body.String(), "permission denied")
			assert.NotContains(t, rec.Body.String(), "relation")
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("allowed request carries headers", func(t *testing.T) {
		limiter := mockService.NewMockRateLimiter(t)
		limiter.On("Allow", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasSuffix(key, "|192.0.2.1")
		})).Return(service.RateLimitResult{Allowed: true, Limit: 10, Remaining: 9, ResetAt: now.Add(time.Minute)}, nil)

		mw := NewRateLimitMiddleware(RateLimitMiddlewareParams{Limiter: limiter, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
		mw.now = func() time.Time { return now }

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, mw.Limit(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get(HeaderRateLimitLimit))
		assert.Equal(t, "9", rec.Header().Get(HeaderRateLimitRemaining))
	})

	t.Run("exceeded", func(t *testing.T) {
		limiter := mockService.NewMockRateLimiter(t)
		limiter.On("Allow", mock.Anything, mock.Anything).
			Return(service.RateLimitResult{Allowed: false, Limit: 10, Remaining: 0, ResetAt: now.Add(1500 * time.Millisecond)}, nil)

		mw := NewRateLimitMiddleware(RateLimitMiddlewareParams{Limiter: limiter, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
		mw.now = func() time.Time { return now }

		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/signin", nil), rec)

		require.NoError(t, mw.Limit(func(echo.Context) error {
			t.Fatal("handler must not run")

			return nil
		})(c))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "2", rec.Header().Get(echo.HeaderRetryAfter))
		assert.Equal(t, "TOO_MANY_REQUESTS", decode(t, rec).Error.Code)
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		limiter := mockService.NewMockRateLimiter(t)
		limiter.On("Allow", mock.Anything, mock.Anything).
			Return(service.RateLimitResult{Allowed: true, Limit: 10, Remaining: 10, ResetAt: now}, errors.New("redis down"))

		mw := NewRateLimitMiddleware(RateLimitMiddlewareParams{Limiter: limiter, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/signup", nil), rec)

		require.NoError(t, mw.Limit(func(c echo.Context) error { return c.NoContent(http.StatusCreated) })(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
