// Package ratelimit implements sliding-window request limits.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitConfig sets per-window limits; a zero limit disables that window.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
}

func (c RateLimitConfig) IsZero() bool {
	return c.RequestsPerMinute <= 0 && c.RequestsPerHour <= 0 && c.RequestsPerDay <= 0
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	// Count returns the requests recorded for key within window.
	Count(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}
