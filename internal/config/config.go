package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	TrustedProxies []string      `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	TokenTTL       time.Duration `yaml:"token_ttl"`
	CookieName     string        `yaml:"cookie_name"`
	SecureCookie   bool          `yaml:"secure_cookie"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	BootstrapAdmin AdminAccount  `yaml:"bootstrap_admin"`
}

// AdminAccount is created on startup when no user with Email exists yet.
type AdminAccount struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type JobsConfig struct {
	LowStockThresholdGrams     float64       `yaml:"low_stock_threshold_grams"`
	SweepInterval              time.Duration `yaml:"sweep_interval"`
	DeductEstimateOnCompletion bool          `yaml:"deduct_estimate_on_completion"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./data/printq.db",
		},
		Auth: AuthConfig{
			TokenTTL:     24 * time.Hour,
			CookieName:   "printq_auth",
			SecureCookie: true,
			BcryptCost:   10,
		},
		Jobs: JobsConfig{
			LowStockThresholdGrams: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Load reads configPath over the defaults. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from PRINTQ_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PRINTQ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv("PRINTQ_DB_PATH"); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv("PRINTQ_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("PRINTQ_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}

	if v := os.Getenv("PRINTQ_SECURE_COOKIE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Auth.SecureCookie = b
		}
	}

	if v := os.Getenv("PRINTQ_ADMIN_EMAIL"); v != "" {
		c.Auth.BootstrapAdmin.Email = v
	}

	if v := os.Getenv("PRINTQ_ADMIN_PASSWORD"); v != "" {
		c.Auth.BootstrapAdmin.Password = v
	}

	if v := os.Getenv("PRINTQ_LOW_STOCK_GRAMS"); v != "" {
		if g, err := strconv.ParseFloat(v, 64); err == nil {
			c.Jobs.LowStockThresholdGrams = g
		}
	}

	if v := os.Getenv("PRINTQ_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Jobs.SweepInterval = d
		}
	}
}

func LoadFromEnv() *Config {
	cfg := defaults()
	cfg.ApplyEnv()
	return cfg
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be non-negative")
	}

	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server write timeout must be non-negative")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}

	if c.Auth.CookieName == "" {
		return fmt.Errorf("auth cookie name is required")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}

	admin := c.Auth.BootstrapAdmin
	if (admin.Email == "") != (admin.Password == "") {
		return fmt.Errorf("bootstrap admin needs both email and password")
	}

	if c.Jobs.LowStockThresholdGrams < 0 {
		return fmt.Errorf("low stock threshold must be non-negative")
	}

	if c.Jobs.SweepInterval < 0 {
		return fmt.Errorf("sweep interval must be non-negative")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}

	return nil
}
