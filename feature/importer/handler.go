package importer

import (
	"errors"

	"aero-importer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/import")
	group.Post("/", h.HandleImport)
	group.Get("/last", h.HandleLast)
}

// HandleImport runs an import. The body is an optional JSON Request;
// ?dry_run=true plans without writing.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	req.DryRun = req.DryRun || c.QueryBool("dry_run")

	l.Info("Import requested", zap.Bool("dry_run", req.DryRun))
	sum, err := h.service.TryImport(c.Context(), req)
	switch {
	case err == nil:
		return c.JSON(sum)
	case errors.Is(err, ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoSources):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoDatabase):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}

	l.Error("Import failed", zap.Error(err))
	body := fiber.Map{"error": err.Error()}
	if sum != nil {
		body["summary"] = sum
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// HandleLast returns the summary of the most recent run.
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	sum := h.service.Last()
	if sum == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no import has run"})
	}
	return c.JSON(sum)
}
