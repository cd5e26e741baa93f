package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studiokit/projectdesk/internal/chat"
	"github.com/studiokit/projectdesk/internal/metrics"
)

// ChatHandlers holds dependencies for chat API handlers.
type ChatHandlers struct {
	store     *chat.Store
	collector *metrics.Metrics
	logger    zerolog.Logger
}

// NewChatHandlers creates new chat API handlers.
func NewChatHandlers(store *chat.Store, collector *metrics.Metrics, logger zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		store:     store,
		collector: collector,
		logger:    logger.With().Str("component", "chat_handlers").Logger(),
	}
}

// RegisterRoutes registers chat API routes on the given fiber group.
func (h *ChatHandlers) RegisterRoutes(v1 fiber.Router) {
	cg := v1.Group("/chat")
	cg.Get("/", h.History)
	cg.Post("/", h.Send)
	cg.Delete("/", h.Clear)
}

func (h *ChatHandlers) History(c *fiber.Ctx) error {
	h.collector.RecordRequest("chat.history", "200")
	return c.JSON(fiber.Map{
		"messages": h.store.History(),
		"typing":   h.store.Typing(),
	})
}

func (h *ChatHandlers) Send(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		h.collector.RecordRequest("chat.send", "400")
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if req.Content == "" {
		h.collector.RecordRequest("chat.send", "400")
		return problemResponse(c, fiber.StatusBadRequest,
			"validation_failed", "Validation Failed", "content is required")
	}

	// The reply lands after this request completes; keep it off the
	// request context.
	done := h.store.Send(context.Background(), req.Content, req.ProjectID)
	h.collector.RecordChatMessage(string(chat.RoleUser))

	go func() {
		if err := <-done; err != nil {
			h.collector.RecordError("chat", "send_failed")
			return
		}
		h.collector.RecordChatMessage(string(chat.RoleAssistant))
	}()

	h.collector.RecordRequest("chat.send", "202")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"messages": h.store.History(),
		"typing":   h.store.Typing(),
	})
}

func (h *ChatHandlers) Clear(c *fiber.Ctx) error {
	h.store.Clear()
	h.collector.RecordRequest("chat.clear", "200")
	return c.JSON(fiber.Map{"messages": h.store.History()})
}
