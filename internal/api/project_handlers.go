package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studiokit/projectdesk/internal/metrics"
	"github.com/studiokit/projectdesk/internal/project"
)

// ProjectHandlers holds dependencies for project API handlers.
type ProjectHandlers struct {
	store     *project.Store
	views     *project.Views
	collector *metrics.Metrics
	logger    zerolog.Logger
}

// NewProjectHandlers creates new project API handlers.
func NewProjectHandlers(store *project.Store, views *project.Views, collector *metrics.Metrics, logger zerolog.Logger) *ProjectHandlers {
	return &ProjectHandlers{
		store:     store,
		views:     views,
		collector: collector,
		logger:    logger.With().Str("component", "project_handlers").Logger(),
	}
}

// RegisterRoutes registers project API routes on the given fiber group.
func (h *ProjectHandlers) RegisterRoutes(v1 fiber.Router) {
	pg := v1.Group("/projects")
	pg.Post("/", h.CreateProject)
	pg.Get("/", h.ListProjects)
	pg.Get("/stats", h.Stats)
	pg.Get("/:id", h.GetProject)
	pg.Patch("/:id", h.UpdateProject)
	pg.Delete("/:id", requireRole(RoleOperator), h.DeleteProject)
	pg.Post("/:id/analyze", h.Analyze)
	pg.Post("/:id/notes", h.AddNote)
	pg.Delete("/:id/notes/:noteID", h.DeleteNote)
	pg.Post("/:id/files", h.AddFile)
	pg.Post("/:id/select", h.SelectProject)
}

func (h *ProjectHandlers) CreateProject(c *fiber.Ctx) error {
	var req project.CreateProjectInput
	if err := c.BodyParser(&req); err != nil {
		h.collector.RecordRequest("projects.create", "400")
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}

	if result := h.views.Validate(req); !result.IsValid {
		h.collector.RecordRequest("projects.create", "400")
		return c.Status(fiber.StatusBadRequest).JSON(ProblemDetail{
			Type:     "validation_failed",
			Title:    "Validation Failed",
			Status:   fiber.StatusBadRequest,
			Instance: c.Path(),
			Errors:   result.Errors,
		})
	}

	p := h.store.Add(req)
	h.collector.RecordRequest("projects.create", "201")
	h.collector.SetProjectsTracked(float64(len(h.store.List())))
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProjectHandlers) ListProjects(c *fiber.Ctx) error {
	criteria := project.Criteria{
		SearchTerm: c.Query("search", ""),
		Status:     c.Query("status", "all"),
		Type:       c.Query("type", "all"),
	}
	field := project.SortField(c.Query("sort", string(project.SortByUpdatedAt)))
	order := project.SortOrder(c.Query("order", string(project.OrderDesc)))

	all := h.store.List()
	filtered := h.views.Filter(all, criteria)
	sorted := h.views.Sort(filtered, field, order)

	h.collector.RecordRequest("projects.list", "200")
	return c.JSON(ListProjectsResponse{
		Projects: sorted,
		Total:    len(sorted),
		Stats:    h.views.Stats(all),
	})
}

func (h *ProjectHandlers) Stats(c *fiber.Ctx) error {
	h.collector.RecordRequest("projects.stats", "200")
	return c.JSON(h.views.Stats(h.store.List()))
}

func (h *ProjectHandlers) GetProject(c *fiber.Ctx) error {
	p := h.store.Get(c.Params("id"))
	if p == nil {
		h.collector.RecordRequest("projects.get", "404")
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "project not found")
	}
	h.collector.RecordRequest("projects.get", "200")
	return c.JSON(p)
}

func (h *ProjectHandlers) UpdateProject(c *fiber.Ctx) error {
	var req project.UpdateProjectInput
	if err := c.BodyParser(&req); err != nil {
		h.collector.RecordRequest("projects.update", "400")
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}

	p := h.store.Update(c.Params("id"), req)
	if p == nil {
		// Unknown ids are a silent no-op on the store; report 204 so
		// stale UI references do not surface as failures.
		h.collector.RecordRequest("projects.update", "204")
		return c.SendStatus(fiber.StatusNoContent)
	}
	h.collector.RecordRequest("projects.update", "200")
	return c.JSON(p)
}

func (h *ProjectHandlers) DeleteProject(c *fiber.Ctx) error {
	h.store.Delete(c.Params("id"))
	h.collector.RecordRequest("projects.delete", "204")
	h.collector.SetProjectsTracked(float64(len(h.store.List())))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProjectHandlers) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		h.collector.RecordRequest("projects.analyze", "400")
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if req.Depth == "" {
		req.Depth = project.AnalysisInitial
	}

	id := c.Params("id")
	started := time.Now()
	// The run outlives this request, so it must not inherit the
	// request context.
	done := h.store.Analyze(context.Background(), id, req.Depth)

	// Observe the async outcome without holding the request open.
	go func() {
		err := <-done
		h.collector.ObserveAnalysisDuration(time.Since(started).Seconds())
		if err != nil {
			h.collector.RecordAnalysis(string(req.Depth), "error")
			return
		}
		h.collector.RecordAnalysis(string(req.Depth), "complete")
	}()

	h.collector.RecordRequest("projects.analyze", "202")
	return c.Status(fiber.StatusAccepted).JSON(AnalyzeResponse{
		ProjectID: id,
		Status:    project.StatusAnalyzing,
		Depth:     req.Depth,
	})
}

func (h *ProjectHandlers) AddNote(c *fiber.Ctx) error {
	var req AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if req.Content == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"validation_failed", "Validation Failed", "content is required")
	}
	ntype := project.NoteType(req.Type)
	if ntype != project.NoteUser && ntype != project.NoteAI {
		ntype = project.NoteUser
	}

	note := h.store.AddNote(c.Params("id"), req.Content, ntype, req.Tags)
	if note == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "project not found")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *ProjectHandlers) DeleteNote(c *fiber.Ctx) error {
	h.store.DeleteNote(c.Params("id"), c.Params("noteID"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProjectHandlers) AddFile(c *fiber.Ctx) error {
	var req AddFileRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "invalid request body")
	}
	if req.Name == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"validation_failed", "Validation Failed", "name is required")
	}

	file := h.store.AddFile(c.Params("id"), req.Name, req.Size, req.MimeType)
	if file == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "project not found")
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

func (h *ProjectHandlers) SelectProject(c *fiber.Ctx) error {
	id := c.Params("id")
	h.store.SetCurrent(id)
	current := h.store.Current()
	if current == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", "project not found")
	}
	return c.JSON(current)
}
