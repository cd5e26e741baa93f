package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "none", cfg.AuthMode)
	assert.Equal(t, 100, cfg.RateLimitRPS)
	assert.Equal(t, time.Second, cfg.AnalysisMinDelay)
	assert.True(t, cfg.SeedOnStart)
	assert.True(t, cfg.Development())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("ANALYSIS_MIN_DELAY", "10ms")
	t.Setenv("SEED_ON_START", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Millisecond, cfg.AnalysisMinDelay)
	assert.False(t, cfg.SeedOnStart)
	assert.False(t, cfg.Development())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown auth mode", func(c *Config) { c.AuthMode = "basic" }, true},
		{"api-key mode without key", func(c *Config) { c.AuthMode = "api-key" }, true},
		{"api-key mode with key", func(c *Config) { c.AuthMode = "api-key"; c.APIKey = "k" }, false},
		{"jwt mode without secret", func(c *Config) { c.AuthMode = "jwt" }, true},
		{"jwt mode with secret", func(c *Config) { c.AuthMode = "jwt"; c.JWTSecret = "s" }, false},
		{"inverted analysis delays", func(c *Config) { c.AnalysisMaxDelay = 0 }, true},
		{"inverted chat delays", func(c *Config) { c.ChatMaxDelay = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
