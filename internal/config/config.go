// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`

	// API
	AuthMode       string `envconfig:"AUTH_MODE" default:"none"` // "none", "api-key", "jwt"
	APIKey         string `envconfig:"API_KEY"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"200"`
	CORSOrigins    string `envconfig:"CORS_ORIGINS"`

	// Settings persistence
	SettingsDBPath string `envconfig:"SETTINGS_DB_PATH" default:"projectdesk.db"`

	// Mock latency bounds
	AnalysisMinDelay time.Duration `envconfig:"ANALYSIS_MIN_DELAY" default:"1s"`
	AnalysisMaxDelay time.Duration `envconfig:"ANALYSIS_MAX_DELAY" default:"3s"`
	ChatMinDelay     time.Duration `envconfig:"CHAT_MIN_DELAY" default:"500ms"`
	ChatMaxDelay     time.Duration `envconfig:"CHAT_MAX_DELAY" default:"1500ms"`

	// Demo data
	SeedOnStart bool `envconfig:"SEED_ON_START" default:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "none", "api-key", "jwt":
	default:
		return fmt.Errorf("invalid AUTH_MODE %q (want none, api-key, or jwt)", c.AuthMode)
	}
	if c.AuthMode == "api-key" && c.APIKey == "" {
		return fmt.Errorf("AUTH_MODE=api-key requires API_KEY")
	}
	if c.AuthMode == "jwt" && c.JWTSecret == "" {
		return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET")
	}
	if c.AnalysisMaxDelay < c.AnalysisMinDelay {
		return fmt.Errorf("ANALYSIS_MAX_DELAY must be >= ANALYSIS_MIN_DELAY")
	}
	if c.ChatMaxDelay < c.ChatMinDelay {
		return fmt.Errorf("CHAT_MAX_DELAY must be >= CHAT_MIN_DELAY")
	}
	return nil
}

// Development reports whether the app runs in development mode.
func (c *Config) Development() bool {
	return c.Environment == "development"
}
