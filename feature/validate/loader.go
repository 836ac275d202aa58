package validate

import "github.com/gofiber/fiber/v2"

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the validation feature. It is disabled without a
// store connection.
func NewFeature(svc *Service, cfg Config) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc, cfg), enabled: svc.db != nil}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "validate"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
