package middleware

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/delivery/http/response"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitMiddlewareParams holds dependencies for RateLimitMiddleware, injected by Fx.
type RateLimitMiddlewareParams struct {
	fx.In

	Limiter service.RateLimiter
	Logger  *slog.Logger
}

// RateLimitMiddleware throttles requests per client IP.
type RateLimitMiddleware struct {
	limiter service.RateLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware.
func NewRateLimitMiddleware(params RateLimitMiddlewareParams) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: params.Limiter,
		logger:  params.Logger,
		now:     time.Now,
	}
}

// Limit rejects requests above the configured rate with 429.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		result, err := m.limiter.Allow(ctx, c.Path()+"|"+c.RealIP())
		if err != nil {
			deliverycontext.LoggerFromContext(ctx, m.logger).Warn("Rate limiter unavailable, allowing request",
				slog.Any("error", err),
			)
		}

		if result.Limit > 0 {
			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.Itoa(result.Limit))
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
			header.Set(HeaderRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
		}

		if !result.Allowed {
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(m.retryAfterSeconds(result.ResetAt)))

			return response.AppError(c, domainerrors.ErrTooManyRequests)
		}

		return next(c)
	}
}

// retryAfterSeconds rounds up so clients never retry before the window slides.
func (m *RateLimitMiddleware) retryAfterSeconds(resetAt time.Time) int {
	wait := resetAt.Sub(m.now()).Seconds()

	return max(int(math.Ceil(wait)), 1)
}
