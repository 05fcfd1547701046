package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvLoginRateLimit  = "LOGIN_RATE_LIMIT"
	EnvLoginRateWindow = "LOGIN_RATE_WINDOW"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvRedisPrefix     = "REDIS_PREFIX"
)

const (
	// DefaultLimit is the attempt budget per window and key.
	DefaultLimit = 10
	// DefaultWindow is the fixed window length.
	DefaultWindow = time.Minute
	// DefaultRedisPrefix namespaces the limiter keys in Redis.
	DefaultRedisPrefix = "qrform:rl"
)

// Config holds the throttle settings. Redis is enabled by setting an
// address; everything else has a working default.
type Config struct {
	Limit         int
	Window        time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// RedisEnabled reports whether a Redis backend is configured.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// LoadConfig reads the throttle settings from the environment.
func LoadConfig() Config {
	cfg := Config{
		Limit:       DefaultLimit,
		Window:      DefaultWindow,
		RedisPrefix: DefaultRedisPrefix,
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLoginRateLimit)); raw != "" {
		if limit, errParse := strconv.Atoi(raw); errParse == nil && limit >= 0 {
			cfg.Limit = limit
		}
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLoginRateWindow)); raw != "" {
		if window, errParse := time.ParseDuration(raw); errParse == nil && window > 0 {
			cfg.Window = window
		}
	}
	cfg.RedisAddr = strings.TrimSpace(os.Getenv(EnvRedisAddr))
	cfg.RedisPassword = strings.TrimSpace(os.Getenv(EnvRedisPassword))
	if raw := strings.TrimSpace(os.Getenv(EnvRedisDB)); raw != "" {
		if dbNum, errParse := strconv.Atoi(raw); errParse == nil && dbNum >= 0 {
			cfg.RedisDB = dbNum
		}
	}
	if prefix := strings.TrimSpace(os.Getenv(EnvRedisPrefix)); prefix != "" {
		cfg.RedisPrefix = prefix
	}
	return cfg
}
