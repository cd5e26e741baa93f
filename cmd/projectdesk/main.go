package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studiokit/projectdesk/internal/api"
	"github.com/studiokit/projectdesk/internal/chat"
	"github.com/studiokit/projectdesk/internal/config"
	"github.com/studiokit/projectdesk/internal/health"
	"github.com/studiokit/projectdesk/internal/metrics"
	"github.com/studiokit/projectdesk/internal/project"
	"github.com/studiokit/projectdesk/internal/settings"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("auth_mode", cfg.AuthMode).
		Bool("seed_on_start", cfg.SeedOnStart).
		Msg("starting projectdesk")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Settings persistence (SQLite)
	settingsStore, err := settings.New(cfg.SettingsDBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.SettingsDBPath).Msg("failed to open settings store")
	}
	defer settingsStore.Close()

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("settings_db", func(ctx context.Context) health.Status {
		if err := settingsStore.Ping(); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// Metrics
	collector := metrics.New()

	// Project store with configured mock latency
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	projects := project.NewStore(logger,
		project.WithLatency(project.JitterLatency(rng, cfg.AnalysisMinDelay, cfg.AnalysisMaxDelay)),
	)
	if cfg.SeedOnStart {
		if err := projects.Initialize(); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
		logger.Info().Int("projects", len(projects.List())).Msg("demo data seeded")
	}
	projects.Subscribe(func() {
		collector.SetProjectsTracked(float64(len(projects.List())))
	})

	views := project.NewViews(logger)

	// Chat store
	responder, err := chat.NewResponder(rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load reply table")
	}
	chatRng := rand.New(rand.NewSource(time.Now().UnixNano()))
	chatStore := chat.NewStore(responder, logger,
		chat.WithLatency(chat.JitterLatency(chatRng, cfg.ChatMinDelay, cfg.ChatMaxDelay)),
	)

	// API server
	server := api.NewServer(api.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		AuthConfig: api.AuthConfig{
			Mode:      cfg.AuthMode,
			APIKey:    cfg.APIKey,
			JWTSecret: cfg.JWTSecret,
		},
		RateLimit: api.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
		CORSOrigins: cfg.CORSOrigins,
	}, projects, views, chatStore, settingsStore, checker, collector, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("api server shutdown error")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("projectdesk stopped")
}
