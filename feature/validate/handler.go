package validate

import (
	"errors"

	"aero-importer/core/aero"
	"aero-importer/core/logger"
	"aero-importer/feature/importer"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handler handles HTTP requests for validation.
type Handler struct {
	service *Service
	limiter *rate.Limiter
}

// NewHandler creates a new HTTP handler throttled by cfg.
func NewHandler(service *Service, cfg Config) *Handler {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Handler{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}
}

// RegisterRoutes registers the validation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/validate", h.throttle)
	group.Get("/", h.HandleValidate)
	group.Post("/", h.HandleValidate)
	group.Get("/schema", h.HandleSchema)
}

func (h *Handler) throttle(c *fiber.Ctx) error {
	if !h.limiter.Allow() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many validation requests"})
	}
	return c.Next()
}

// HandleValidate compares expected and stored counts. GET derives the
// expected counts from the configured snapshots; POST reads them from the body.
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	filter, err := ParseFilter(c.Query("source"), c.Query("cycle"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var expected map[aero.Kind]int64
	if c.Method() == fiber.MethodPost {
		var raw map[string]int64
		if err := c.BodyParser(&raw); err != nil || raw == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must be a JSON object of kind to count"})
		}
		if expected, err = ParseExpected(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	report, err := h.service.Validate(c.Context(), filter, expected)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrNoPlanner) || errors.Is(err, importer.ErrNoSources) {
			status = fiber.StatusBadRequest
		}
		l.Error("Validation failed", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleSchema compares the live tables with the models.
func (h *Handler) HandleSchema(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
