package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studiokit/projectdesk/internal/settings"
)

// SettingsHandlers holds dependencies for settings API handlers.
type SettingsHandlers struct {
	store  *settings.Store
	logger zerolog.Logger
}

// NewSettingsHandlers creates new settings API handlers.
func NewSettingsHandlers(store *settings.Store, logger zerolog.Logger) *SettingsHandlers {
	return &SettingsHandlers{
		store:  store,
		logger: logger.With().Str("component", "settings_handlers").Logger(),
	}
}

// RegisterRoutes registers settings API routes on the given fiber group.
func (h *SettingsHandlers) RegisterRoutes(v1 fiber.Router) {
	sg := v1.Group("/settings")
	sg.Get("/llm/:provider", h.GetLLM)
	sg.Put("/llm/:provider", requireRole(RoleOperator), h.PutLLM)
	sg.Get("/profile", h.GetProfile)
	sg.Put("/profile", h.PutProfile)
	sg.Get("/preferences", h.GetPreferences)
	sg.Put("/preferences", h.PutPreferences)
}

func (h *SettingsHandlers) GetLLM(c *fiber.Ctx) error {
	cfg, ok, err := h.store.GetLLM(c.Params("provider"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read llm settings")
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to read settings")
	}
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "provider not configured")
	}
	// Never echo the stored key back in full.
	cfg.APIKey = maskSecret(cfg.APIKey)
	return c.JSON(cfg)
}

func (h *SettingsHandlers) PutLLM(c *fiber.Ctx) error {
	var req settings.LLMSettings
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if err := h.store.SetLLM(c.Params("provider"), req); err != nil {
		h.logger.Error().Err(err).Msg("failed to store llm settings")
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to store settings")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SettingsHandlers) GetProfile(c *fiber.Ctx) error {
	profile, ok, err := h.store.GetProfile()
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to read profile")
	}
	if !ok {
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "profile not set")
	}
	return c.JSON(profile)
}

func (h *SettingsHandlers) PutProfile(c *fiber.Ctx) error {
	var req settings.Profile
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if err := h.store.SetProfile(req); err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to store profile")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SettingsHandlers) GetPreferences(c *fiber.Ctx) error {
	prefs, ok, err := h.store.GetPreferences()
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to read preferences")
	}
	if !ok {
		// Unset preferences fall back to defaults rather than 404ing
		// the settings screen.
		prefs = settings.Preferences{Theme: "light", Language: "en", Notifications: true}
	}
	return c.JSON(prefs)
}

func (h *SettingsHandlers) PutPreferences(c *fiber.Ctx) error {
	var req settings.Preferences
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if err := h.store.SetPreferences(req); err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"storage_error", "Internal Server Error", "failed to store preferences")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// maskSecret keeps the last four characters of a secret visible.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return s
	}
	masked := make([]byte, len(s)-4)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + s[len(s)-4:]
}
