// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionSecret is the HMAC signing secret for session tokens. Must be at least 32 bytes.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// SessionTimeout is the session lifetime (e.g. "1h"). Cookie Max-Age tracks the remainder.
	SessionTimeout string `mapstructure:"SESSION_TIMEOUT"`
	// SessionRenewalThreshold is the idle time after which a session token is re-issued on use (e.g. "5m").
	SessionRenewalThreshold string `mapstructure:"SESSION_RENEWAL_THRESHOLD"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	// Session cookies carry the Secure flag only when Env is production.
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP collector endpoint for traces/metrics/logs (e.g. localhost:4317).
	// Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TIMEOUT", "1h")
	v.SetDefault("SESSION_RENEWAL_THRESHOLD", "5m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 32 {
		return nil, errors.New("config: SESSION_SECRET must be at least 32 bytes")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// Production reports whether the app runs in production mode.
// Controls the Secure flag on session cookies.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Timeout parses SessionTimeout as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.SessionTimeout)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RenewalThreshold parses SessionRenewalThreshold as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) RenewalThreshold() time.Duration {
	d, err := time.ParseDuration(c.SessionRenewalThreshold)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
