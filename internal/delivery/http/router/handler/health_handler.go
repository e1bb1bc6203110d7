package handler

import (
	"context"
	"net/http"
	"time"

	"postly/config"
	"postly/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandlerParams holds dependencies for HealthHandler, injected by Fx.
type HealthHandlerParams struct {
	fx.In

	Config   *config.Config
	Database HealthChecker `optional:"true"`
}

// HealthHandler serves the banner and health endpoints.
type HealthHandler struct {
	serviceName string
	database    HealthChecker
}

// NewHealthHandler is the constructor for HealthHandler.
func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	serviceName := params.Config.Env.ServiceName
	if serviceName == "" {
		serviceName = "postly"
	}

	return &HealthHandler{serviceName: serviceName, database: params.Database}
}

// Root returns a service banner.
func (h *HealthHandler) Root(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"service": h.serviceName}, "Welcome to "+h.serviceName)
}

// Health reports liveness and, when configured, database reachability.
func (h *HealthHandler) Health(c echo.Context) error {
	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		if err := h.database.PingContext(ctx); err != nil {
			return response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable", "")
		}
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "")
}
