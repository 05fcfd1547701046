package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter. Counters
// are per process; a multi-instance deployment should configure Redis. Stale
// counters are evicted when the window rolls so attacker-chosen keys cannot
// grow the map without bound.
type MemoryLimiter struct {
	mu          sync.Mutex
	counters    map[string]*memoryEntry
	sweepBucket int64
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the attempt fits in the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	bucket := now.Unix() / int64(window.Seconds())
	reset := time.Unix((bucket+1)*int64(window.Seconds()), 0).UTC()

	l.mu.Lock()
	if l.sweepBucket != bucket {
		for staleKey, stale := range l.counters {
			if stale.window != bucket {
				delete(l.counters, staleKey)
			}
		}
		l.sweepBucket = bucket
	}
	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: bucket}
		l.counters[key] = entry
	}
	if entry.window != bucket {
		entry.window = bucket
		entry.count = 0
	}
	if entry.count >= limit {
		l.mu.Unlock()
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	remaining := limit - entry.count
	l.mu.Unlock()
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}
