// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Experience ledger API
	Ledger LedgerConfig

	// Session behaviour
	Session SessionConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `env:"APP_NAME" envDefault:"koydo-experience-hub"`
	Environment Environment `env:"APP_ENV" envDefault:"development"`
	Debug       bool        `env:"APP_DEBUG" envDefault:"false"`
	Version     string      `env:"APP_VERSION" envDefault:"0.1.0"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// LedgerConfig holds experience-ledger API client settings.
type LedgerConfig struct {
	// Base URL of the platform backend serving the ledger endpoints.
	BaseURL string `env:"LEDGER_BASE_URL" envDefault:"https://app.koydo.com"`

	// Bearer token for authenticated requests.
	APIKey string `env:"LEDGER_API_KEY"`

	// Per-request timeout.
	RequestTimeout time.Duration `env:"LEDGER_REQUEST_TIMEOUT" envDefault:"15s"`

	// Client-side rate limiting.
	RateLimit      int `env:"LEDGER_RATE_LIMIT" envDefault:"5"`
	RateLimitBurst int `env:"LEDGER_RATE_LIMIT_BURST" envDefault:"10"`
}

// SessionConfig holds experience-session behaviour settings.
type SessionConfig struct {
	// SweepInterval is the period of the background reconciliation
	// sweep. Zero disables the sweep entirely.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// HydrateTimeout bounds the initial state fetch.
	HydrateTimeout time.Duration `env:"SESSION_HYDRATE_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.App); err != nil {
		return nil, fmt.Errorf("app config: %w", err)
	}
	if err := env.Parse(&cfg.Ledger); err != nil {
		return nil, fmt.Errorf("ledger config: %w", err)
	}
	if err := env.Parse(&cfg.Session); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded configuration for consistency.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown environment: %s", c.App.Environment)
	}

	if c.Ledger.BaseURL == "" {
		return errors.New("ledger base URL is required")
	}
	if _, err := url.ParseRequestURI(c.Ledger.BaseURL); err != nil {
		return fmt.Errorf("invalid ledger base URL: %w", err)
	}

	if c.Ledger.RequestTimeout <= 0 {
		return errors.New("ledger request timeout must be positive")
	}
	if c.Ledger.RateLimit <= 0 {
		return errors.New("ledger rate limit must be positive")
	}
	if c.Ledger.RateLimitBurst < c.Ledger.RateLimit {
		return errors.New("ledger rate limit burst must be at least the rate limit")
	}

	if c.Session.SweepInterval < 0 {
		return errors.New("session sweep interval cannot be negative")
	}
	if c.Session.HydrateTimeout <= 0 {
		return errors.New("session hydrate timeout must be positive")
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// IsDevelopment reports whether the app runs in development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}
