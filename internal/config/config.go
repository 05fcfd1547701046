package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvSessionSecret = "SESSION_SECRET"
	EnvSessionTTL    = "SESSION_TTL"
	EnvBaseURL       = "BASE_URL"
	EnvAppEnv        = "APP_ENV"
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// DefaultSessionSecret is the development placeholder. Production startup
// refuses to run with it.
const DefaultSessionSecret = "change-me-to-a-secure-random-string"

// defaultSessionTTL is used when the config omits or invalidates session TTL.
const defaultSessionTTL = 24 * time.Hour

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// ErrInsecureSessionSecret indicates a missing or placeholder session secret
// in production mode.
var ErrInsecureSessionSecret = errors.New("session secret is missing or uses the default placeholder; set SESSION_SECRET (or `session.secret`) to a random value")

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// SessionConfig holds session secret and TTL settings.
type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// LoadDatabaseDSN reads the database DSN from the environment or the YAML
// config file. The environment wins.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// LoadSessionConfig loads session settings from the YAML config file with
// environment overrides, then validates the secret for the current mode.
func LoadSessionConfig(configPath string) (SessionConfig, error) {
	// fileConfig maps the YAML fields needed for session settings.
	type fileConfig struct {
		Session SessionConfig `yaml:"session"`
	}

	result := SessionConfig{TTL: defaultSessionTTL}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Session
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvSessionSecret)); secret != "" {
		result.Secret = secret
	}
	if ttlRaw := strings.TrimSpace(os.Getenv(EnvSessionTTL)); ttlRaw != "" {
		if ttl, errParse := time.ParseDuration(ttlRaw); errParse == nil && ttl > 0 {
			result.TTL = ttl
		}
	}
	if result.TTL <= 0 {
		result.TTL = defaultSessionTTL
	}
	if result.Secret == "" {
		result.Secret = DefaultSessionSecret
	}

	if IsProduction() && (result.Secret == "" || result.Secret == DefaultSessionSecret) {
		return SessionConfig{}, ErrInsecureSessionSecret
	}
	return result, nil
}

// LoadBaseURL reads the public base URL used to derive registration links.
func LoadBaseURL(configPath string) string {
	if base := strings.TrimSpace(os.Getenv(EnvBaseURL)); base != "" {
		return strings.TrimRight(base, "/")
	}

	// fileConfig maps the YAML field for the base URL.
	type fileConfig struct {
		BaseURL string `yaml:"base-url"`
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if base := strings.TrimSpace(cfg.BaseURL); base != "" {
				return strings.TrimRight(base, "/")
			}
		}
	}
	return "http://localhost:5000"
}

// IsProduction reports whether the process runs in production mode.
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(EnvAppEnv)), "production")
}
