package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// CatalogHandler serves the programme levels, grade table and course catalog.
type CatalogHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(service service.GradeService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register wires catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/levels", h.levels)
	router.Get("/grades", h.grades)
	router.Get("/courses", h.courses)
}

func (h *CatalogHandler) levels(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "levels retrieved", h.service.Levels())
}

func (h *CatalogHandler) grades(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "grade points retrieved", h.service.GradePoints())
}

func (h *CatalogHandler) courses(c *fiber.Ctx) error {
	level := c.Query("level")
	courses, err := h.service.Courses(level)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLevel) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	meta := fiber.Map{"count": len(courses)}
	if level != "" {
		meta["level"] = level
	}
	return utils.OK(c, courses, "courses retrieved", meta)
}
