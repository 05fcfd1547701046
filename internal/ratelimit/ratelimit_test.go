package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	for i := 0; i < 3; i++ {
		result, errAllow := limiter.Allow(ctx, "k", 3, time.Minute, now)
		if errAllow != nil {
			t.Fatalf("allow %d: %v", i, errAllow)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d rejected within budget", i)
		}
	}

	result, errAllow := limiter.Allow(ctx, "k", 3, time.Minute, now)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatal("expected rejection over budget")
	}
	if result.Remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", result.Remaining)
	}

	// A new window resets the counter.
	later := now.Add(time.Minute)
	result, errAllow = limiter.Allow(ctx, "k", 3, time.Minute, later)
	if errAllow != nil {
		t.Fatalf("allow in next window: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatal("expected fresh budget in next window")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	if result, _ := limiter.Allow(ctx, "a", 1, time.Minute, now); !result.Allowed {
		t.Fatal("first attempt on a rejected")
	}
	if result, _ := limiter.Allow(ctx, "a", 1, time.Minute, now); result.Allowed {
		t.Fatal("second attempt on a allowed")
	}
	if result, _ := limiter.Allow(ctx, "b", 1, time.Minute, now); !result.Allowed {
		t.Fatal("attempt on b rejected")
	}
}

func TestMemoryLimiterEvictsStaleKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	for _, key := range []string{"a", "b", "c"} {
		if _, errAllow := limiter.Allow(ctx, key, 3, time.Minute, now); errAllow != nil {
			t.Fatalf("allow %q: %v", key, errAllow)
		}
	}

	// Rolling into the next window drops the previous window's counters.
	later := now.Add(2 * time.Minute)
	if _, errAllow := limiter.Allow(ctx, "d", 3, time.Minute, later); errAllow != nil {
		t.Fatalf("allow in next window: %v", errAllow)
	}

	limiter.mu.Lock()
	size := len(limiter.counters)
	_, staleKept := limiter.counters["a"]
	limiter.mu.Unlock()
	if staleKept {
		t.Fatal("expected stale counter evicted")
	}
	if size != 1 {
		t.Fatalf("expected 1 live counter, got %d", size)
	}
}

func TestLimiterDisabledCases(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Now()

	if result, _ := limiter.Allow(ctx, "", 5, time.Minute, now); !result.Allowed {
		t.Fatal("empty key must pass")
	}
	if result, _ := limiter.Allow(ctx, "k", 0, time.Minute, now); !result.Allowed {
		t.Fatal("zero limit must pass")
	}
}

func TestManagerFallsBackToMemory(t *testing.T) {
	// No Redis address configured: the manager uses the memory backend.
	manager := NewManager(Config{Limit: 2, Window: time.Minute}, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, errAllow := manager.Allow(ctx, "k")
		if errAllow != nil {
			t.Fatalf("allow %d: %v", i, errAllow)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d rejected within budget", i)
		}
	}
	result, errAllow := manager.Allow(ctx, "k")
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatal("expected rejection over budget")
	}
}

func TestLoginKey(t *testing.T) {
	if key := LoginKey("1.2.3.4", "Alice"); key != "ip:1.2.3.4:u:alice" {
		t.Fatalf("key = %q", key)
	}
	if key := LoginKey("", ""); key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv(EnvLoginRateLimit, "")
	t.Setenv(EnvLoginRateWindow, "")
	t.Setenv(EnvRedisAddr, "")
	cfg := LoadConfig()
	if cfg.Limit != DefaultLimit || cfg.Window != DefaultWindow {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.RedisEnabled() {
		t.Fatal("redis must be disabled by default")
	}

	t.Setenv(EnvLoginRateLimit, "5")
	t.Setenv(EnvLoginRateWindow, "30s")
	t.Setenv(EnvRedisAddr, "localhost:6379")
	cfg = LoadConfig()
	if cfg.Limit != 5 || cfg.Window != 30*time.Second {
		t.Fatalf("overrides: %+v", cfg)
	}
	if !cfg.RedisEnabled() {
		t.Fatal("expected redis enabled")
	}
}
