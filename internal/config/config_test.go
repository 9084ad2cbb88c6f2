package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Jobs.LowStockThresholdGrams != 50 {
		t.Fatalf("expected default threshold 50, got %v", cfg.Jobs.LowStockThresholdGrams)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printq.yaml")
	data := []byte(`
server:
  port: 9090
database:
  path: /tmp/x.db
jobs:
  sweep_interval: 2m
  deduct_estimate_on_completion: true
logging:
  level: debug
  format: console
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Jobs.SweepInterval != 2*time.Minute {
		t.Fatalf("expected sweep interval 2m, got %v", cfg.Jobs.SweepInterval)
	}
	if !cfg.Jobs.DeductEstimateOnCompletion {
		t.Fatalf("expected deduct_estimate_on_completion to be set")
	}
	if cfg.Auth.CookieName != "printq_auth" {
		t.Fatalf("unset fields should keep defaults, got cookie %q", cfg.Auth.CookieName)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [1, 2"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PRINTQ_PORT", "7000")
	t.Setenv("PRINTQ_LOG_LEVEL", "WARN")
	t.Setenv("PRINTQ_LOW_STOCK_GRAMS", "12.5")
	t.Setenv("PRINTQ_SECURE_COOKIE", "false")

	cfg := LoadFromEnv()
	if cfg.Server.Port != 7000 {
		t.Fatalf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected level warn, got %q", cfg.Logging.Level)
	}
	if cfg.Jobs.LowStockThresholdGrams != 12.5 {
		t.Fatalf("expected threshold 12.5, got %v", cfg.Jobs.LowStockThresholdGrams)
	}
	if cfg.Auth.SecureCookie {
		t.Fatalf("expected secure cookie disabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 1 }},
		{"half bootstrap admin", func(c *Config) { c.Auth.BootstrapAdmin.Email = "a@b.co" }},
		{"negative threshold", func(c *Config) { c.Jobs.LowStockThresholdGrams = -1 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "plain" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
