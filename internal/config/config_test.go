package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
	if cfg.Timeout() != time.Hour {
		t.Errorf("Timeout: got %v", cfg.Timeout())
	}
	if cfg.RenewalThreshold() != 5*time.Minute {
		t.Errorf("RenewalThreshold: got %v", cfg.RenewalThreshold())
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost: got %d", cfg.BcryptCost)
	}
	if cfg.Production() {
		t.Error("default env reports production")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SESSION_TIMEOUT", "30m")
	t.Setenv("SESSION_RENEWAL_THRESHOLD", "2m")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
	if cfg.Timeout() != 30*time.Minute {
		t.Errorf("Timeout: got %v", cfg.Timeout())
	}
	if cfg.RenewalThreshold() != 2*time.Minute {
		t.Errorf("RenewalThreshold: got %v", cfg.RenewalThreshold())
	}
	if !cfg.Production() {
		t.Error("APP_ENV=production not reported")
	}
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("SESSION_SECRET", "too-short")
	if _, err := Load(); err == nil {
		t.Error("short SESSION_SECRET accepted")
	}
}

func TestLoad_BadBcryptCostRejected(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Error("BCRYPT_COST=99 accepted")
	}
}

func TestDurationFallbacks(t *testing.T) {
	c := &Config{SessionTimeout: "garbage", SessionRenewalThreshold: "-5m"}
	if c.Timeout() != time.Hour {
		t.Errorf("invalid timeout fallback: got %v", c.Timeout())
	}
	if c.RenewalThreshold() != 5*time.Minute {
		t.Errorf("negative threshold fallback: got %v", c.RenewalThreshold())
	}
}
