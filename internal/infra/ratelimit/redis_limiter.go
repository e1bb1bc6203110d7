// Package ratelimit throttles credential endpoints with a redis sliding window.
package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"postly/config"
	"postly/internal/domain/lifecycle"
	"postly/internal/domain/service"
	"postly/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const keyPrefix = "postly:ratelimit:"

// redisLimiter keeps one sorted set per key whose members are request timestamps.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// noopLimiter allows everything. Used when rate limiting is disabled.
type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (service.RateLimitResult, error) {
	return service.RateLimitResult{Allowed: true}, nil
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New returns the redis limiter when enabled, otherwise a limiter that never throttles.
// A redis that is down at startup is logged, not fatal: the limiter fails open.
func New(params Params) service.RateLimiter {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled {
		params.Logger.Info("Rate limiting disabled")

		return noopLimiter{}
	}

	client := NewRedisClient(cfg)
	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				params.Logger.Warn("Rate limit redis unreachable, requests will not be throttled",
					slog.String("addr", cfg.Addr),
					slog.Any("error", err),
				)
			}

			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedisLimiter(client, cfg.Limit, cfg.Window)
}

// NewRedisClient builds the pooled client for the limiter.
func NewRedisClient(cfg *config.RateLimitConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisLimiter allows limit requests per key in any window-long interval.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) service.RateLimiter {
	return &redisLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// slidingWindow trims the window, then records the request only when it fits.
// Rejected requests are not stored, so a client retrying while throttled does
// not push its own reset time further out.
// Returns {allowed, count, resetAtMillis}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local reset = now + window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    reset = tonumber(oldest[2]) + window
  end
  return {0, count, reset}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, now + window}
`)

// Allow reports whether the request fits the window and records it if so. When
// redis fails the request is allowed and the error is returned for logging.
func (l *redisLimiter) Allow(ctx context.Context, key string) (service.RateLimitResult, error) {
	now := l.now()
	member := strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()

	reply, err := slidingWindow.Run(ctx, l.client, []string{keyPrefix + key},
		now.UnixMilli(), l.window.Milliseconds(), l.limit, member,
	).Int64Slice()
	if err == nil && len(reply) != 3 {
		err = errors.Errorf("unexpected rate limit reply %v", reply)
	}
	if err != nil {
		return service.RateLimitResult{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit,
			ResetAt:   now.Add(l.window),
		}, errors.Wrap(err, "rate limit script")
	}

	allowed, count, resetAt := reply[0] == 1, int(reply[1]), time.UnixMilli(reply[2])
	if !allowed {
		return service.RateLimitResult{Allowed: false, Limit: l.limit, ResetAt: resetAt}, nil
	}

	return service.RateLimitResult{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		ResetAt:   resetAt,
	}, nil
}
