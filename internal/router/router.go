package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholar-hub-api/internal/config"
	"github.com/noah-isme/scholar-hub-api/internal/handler"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CatalogHandler   *handler.CatalogHandler
	CGPAHandler      *handler.CGPAHandler
	PredictorHandler *handler.PredictorHandler
	RoadmapHandler   *handler.RoadmapHandler
	ChatHandler      *handler.ChatHandler
	TrackerHandler   *handler.TrackerHandler
	ResumeHandler    *handler.ResumeHandler
	UploadHandler    *handler.UploadHandler
	SeedHandler      *handler.SeedHandler
	HealthProbes     map[string]handler.HealthProbe
	JWTMiddleware    fiber.Handler
	OptionalJWT      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = passThrough
	}
	optionalJWT := deps.OptionalJWT
	if optionalJWT == nil {
		optionalJWT = passThrough
	}

	// Public grade tools
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api.Group("/catalog"))
	}
	if deps.CGPAHandler != nil {
		deps.CGPAHandler.Register(api.Group("/cgpa"))
	}
	if deps.PredictorHandler != nil {
		deps.PredictorHandler.Register(api.Group("/predictor"))
	}

	if deps.RoadmapHandler != nil {
		deps.RoadmapHandler.Register(api.Group("/roadmaps"))
	}

	// Chat widget, anonymous or signed in
	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(api.Group("/chat", optionalJWT))
	}

	// Student workspace
	v2 := app.Group("/api/v2", jwtMiddleware)
	if deps.TrackerHandler != nil {
		deps.TrackerHandler.Register(v2.Group("/tracker"))
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.Register(v2.Group("/resumes"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(v2.Group("/uploads"))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(app.Group("/api/internal/seed"))
	}
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
