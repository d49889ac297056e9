package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// SeedTokenHeader carries the shared secret for seeding endpoints.
const SeedTokenHeader = "X-Seed-Token"

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/roadmaps", h.roadmaps)
}

type seedRoadmapsRequest struct {
	Items []models.RoadmapStage `json:"items"`
}

func (h *SeedHandler) roadmaps(c *fiber.Ctx) error {
	token := c.Get(SeedTokenHeader)
	var payload seedRoadmapsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	affected, err := h.service.SeedRoadmaps(middleware.RequestContext(c), token, payload.Items)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "roadmaps seeded", fiber.Map{"affected": affected})
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	case errors.Is(err, service.ErrSeedInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}
