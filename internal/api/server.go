package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/studiokit/projectdesk/internal/chat"
	"github.com/studiokit/projectdesk/internal/health"
	"github.com/studiokit/projectdesk/internal/metrics"
	"github.com/studiokit/projectdesk/internal/project"
	"github.com/studiokit/projectdesk/internal/requestid"
	"github.com/studiokit/projectdesk/internal/settings"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	AuthConfig  AuthConfig
	RateLimit   RateLimitConfig
	CORSOrigins string
}

// Server is the dashboard API Fiber application.
type Server struct {
	app     *fiber.App
	limiter *RateLimiter
	logger  zerolog.Logger
	config  ServerConfig
}

// NewServer creates and configures the API server.
func NewServer(
	cfg ServerConfig,
	projects *project.Store,
	views *project.Views,
	chatStore *chat.Store,
	settingsStore *settings.Store,
	checker *health.Checker,
	collector *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s := &Server{
		app:    app,
		logger: logger.With().Str("component", "api_server").Logger(),
		config: cfg,
	}

	s.setupMiddleware(cfg, collector, logger)

	ph := NewProjectHandlers(projects, views, collector, logger)
	ch := NewChatHandlers(chatStore, collector, logger)
	sh := NewSettingsHandlers(settingsStore, logger)
	s.setupRoutes(ph, ch, sh, checker, collector)

	return s
}

func (s *Server) setupMiddleware(cfg ServerConfig, collector *metrics.Metrics, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Correlation ID: honor the caller's, otherwise mint one.
	s.app.Use(func(c *fiber.Ctx) error {
		reqID := c.Get("X-Request-ID")
		if reqID == "" {
			reqID = requestid.Generate()
		}
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		c.SetUserContext(requestid.With(c.UserContext(), reqID))
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PATCH, PUT, DELETE, OPTIONS",
		}))
	}

	if cfg.RateLimit.RPS > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, collector)
		s.app.Use(s.limiter.Middleware())
	}

	s.app.Use(NewAuthMiddleware(cfg.AuthConfig, logger))

	// Request logging, skipping noisy probes.
	s.app.Use(func(c *fiber.Ctx) error {
		if skipAuth(c.Path()) {
			return c.Next()
		}
		logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Str("request_id", c.Locals("request_id").(string)).
			Msg("api request")
		return c.Next()
	})
}

func (s *Server) setupRoutes(
	ph *ProjectHandlers,
	ch *ChatHandlers,
	sh *SettingsHandlers,
	checker *health.Checker,
	collector *metrics.Metrics,
) {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/readyz", func(c *fiber.Ctx) error {
		report := checker.Run(c.Context())
		if !report.Ready {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"status": "not_ready", "checks": report.Checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": report.Checks})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	v1 := s.app.Group("/api/v1")

	ph.RegisterRoutes(v1)
	ch.RegisterRoutes(v1)
	sh.RegisterRoutes(v1)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("api server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server and its background work.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("api server shutting down")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.app.Shutdown()
}

// App returns the underlying Fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		// Internal details stay in the log, never in the response.
		detail := err.Error()
		if code == fiber.StatusInternalServerError {
			detail = "An internal error occurred"
		}

		return c.Status(code).JSON(ProblemDetail{
			Type:     "internal_error",
			Title:    "Internal Server Error",
			Status:   code,
			Detail:   detail,
			Instance: c.Path(),
		})
	}
}
