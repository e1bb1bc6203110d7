package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postly/config"
	deliverycontext "postly/internal/delivery/context"
	domainerrors "postly/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent", incoming: "", keep: false},
		{name: "client id reused", incoming: "abc-123", keep: true},
		{name: "control characters rejected", incoming: "abc\r\nX-Evil: 1", keep: false},
		{name: "oversized rejected", incoming: strings.Repeat("a", maxRequestIDLength+1), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			mw := NewRequestIDMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
			err := mw.Process(func(c echo.Context) error {
				seen = deliverycontext.RequestIDFromContext(c.Request().Context())
				assert.NotNil(t, deliverycontext.LoggerFromContext(c.Request().Context(), nil))

				return nil
			})(c)

			require.NoError(t, err)
			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(deliverycontext.HeaderXRequestID))
			assert.Equal(t, tt.keep, seen == tt.incoming)
		})
	}
}

func TestLoggerMiddleware_LogsPredictedStatus(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Env.Debug = true
	mw := NewLoggerMiddleware(slog.New(slog.NewTextHandler(&buf, nil)), cfg)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/posts/x", nil), httptest.NewRecorder())

	err := mw.Handle(func(echo.Context) error { return domainerrors.ErrPostNotFound })(c)

	require.ErrorIs(t, err, domainerrors.ErrPostNotFound)
	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLoggerMiddleware_SilentWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggerMiddleware(slog.New(slog.NewTextHandler(&buf, nil)), &config.Config{})

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	require.NoError(t, mw.Handle(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c))
	assert.Empty(t, buf.String())
}
