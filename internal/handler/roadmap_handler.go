package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// RoadmapHandler exposes learning roadmap endpoints.
type RoadmapHandler struct {
	service service.RoadmapService
	logger  zerolog.Logger
}

// NewRoadmapHandler constructs a roadmap handler.
func NewRoadmapHandler(service service.RoadmapService, logger zerolog.Logger) *RoadmapHandler {
	return &RoadmapHandler{
		service: service,
		logger:  logger.With().Str("component", "roadmap_handler").Logger(),
	}
}

// Register wires roadmap routes.
func (h *RoadmapHandler) Register(router fiber.Router) {
	router.Get("/stages", h.listStages)
	router.Get("/tracks", h.tracks)
}

func (h *RoadmapHandler) listStages(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize == 0 {
		if legacy, legacyErr := parseQueryInt(c, "page_size"); legacyErr == nil {
			pageSize = legacy
		}
	}

	req := dto.RoadmapStageListRequest{
		Track:    c.Query("track"),
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
		Search:   c.Query("search"),
		Tags:     splitAndTrim(c.Query("tags")),
	}

	result, err := h.service.ListStages(middleware.RequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list roadmap stages")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch roadmap")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters":    result.Filters,
		"cache_hit":  result.CacheHit,
	}

	return utils.OK(c, result.Items, "roadmap stages retrieved", meta)
}

func (h *RoadmapHandler) tracks(c *fiber.Ctx) error {
	tracks, err := h.service.Tracks(middleware.RequestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list roadmap tracks")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch tracks")
	}
	return utils.SendSuccess(c, "roadmap tracks retrieved", tracks)
}
