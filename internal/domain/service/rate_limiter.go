package service

import (
	"context"
	"time"
)

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per key inside a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}
