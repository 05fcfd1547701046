// Package ratelimit throttles credential-guessing on the authentication
// endpoints with a fixed-window counter, backed by Redis when configured and
// by process memory otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks over fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}
