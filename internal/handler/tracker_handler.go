package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// TrackerHandler exposes the authenticated grade tracker.
type TrackerHandler struct {
	service   service.TrackerService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTrackerHandler constructs a tracker handler.
func NewTrackerHandler(service service.TrackerService, validate *validator.Validate, logger zerolog.Logger) *TrackerHandler {
	return &TrackerHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "tracker_handler").Logger(),
	}
}

// Register wires tracker routes. The router must already enforce authentication.
func (h *TrackerHandler) Register(router fiber.Router) {
	router.Get("/entries", h.list)
	router.Post("/entries", h.add)
	router.Patch("/entries/:code", h.update)
	router.Delete("/entries/:code", h.remove)
	router.Delete("/levels/:level", h.resetLevel)
	router.Get("/summary", h.summary)
	router.Get("/level", h.programLevel)
	router.Put("/level", h.setProgramLevel)
}

func (h *TrackerHandler) list(c *fiber.Ctx) error {
	entries, err := h.service.ListEntries(middleware.RequestContext(c), userIDFromContext(c))
	if err != nil {
		return h.trackerError(c, err, "failed to list tracked courses")
	}
	return utils.OK(c, entries, "tracked courses retrieved", fiber.Map{"count": len(entries)})
}

func (h *TrackerHandler) add(c *fiber.Ctx) error {
	var req dto.TrackerAddRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	entry, err := h.service.AddCourse(middleware.RequestContext(c), userIDFromContext(c), req)
	if err != nil {
		return h.trackerError(c, err, "failed to track course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course tracked", entry)
}

func (h *TrackerHandler) update(c *fiber.Ctx) error {
	var req dto.TrackerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if req.Grade == nil && req.IncludeInCGPA == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "nothing to update")
	}

	// An empty grade moves the course back to ungraded.
	requested := req.Grade
	if requested != nil && strings.TrimSpace(*requested) == "" {
		req.Grade = nil
	}
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	req.Grade = requested

	entry, err := h.service.UpdateEntry(middleware.RequestContext(c), userIDFromContext(c), c.Params("code"), req)
	if err != nil {
		return h.trackerError(c, err, "failed to update tracked course")
	}
	return utils.SendSuccess(c, "tracked course updated", entry)
}

func (h *TrackerHandler) remove(c *fiber.Ctx) error {
	if err := h.service.RemoveCourse(middleware.RequestContext(c), userIDFromContext(c), c.Params("code")); err != nil {
		return h.trackerError(c, err, "failed to remove tracked course")
	}
	return utils.SendSuccess(c, "tracked course removed", nil)
}

func (h *TrackerHandler) resetLevel(c *fiber.Ctx) error {
	removed, err := h.service.ResetLevel(middleware.RequestContext(c), userIDFromContext(c), c.Params("level"))
	if err != nil {
		return h.trackerError(c, err, "failed to reset level")
	}
	return utils.SendSuccess(c, "level reset", fiber.Map{"removed": removed})
}

func (h *TrackerHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(middleware.RequestContext(c), userIDFromContext(c))
	if err != nil {
		return h.trackerError(c, err, "failed to compute summary")
	}
	return utils.SendSuccess(c, "summary computed", summary)
}

func (h *TrackerHandler) programLevel(c *fiber.Ctx) error {
	level, err := h.service.ProgramLevel(middleware.RequestContext(c), userIDFromContext(c))
	if err != nil {
		return h.trackerError(c, err, "failed to load programme level")
	}
	return utils.SendSuccess(c, "programme level retrieved", fiber.Map{"level": level})
}

func (h *TrackerHandler) setProgramLevel(c *fiber.Ctx) error {
	var req dto.TrackerLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	req.Level = strings.ToLower(strings.TrimSpace(req.Level))
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	level, err := h.service.SetProgramLevel(middleware.RequestContext(c), userIDFromContext(c), req.Level)
	if err != nil {
		return h.trackerError(c, err, "failed to store programme level")
	}
	return utils.SendSuccess(c, "programme level updated", fiber.Map{"level": level})
}

func (h *TrackerHandler) trackerError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrEntryNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCourseAlreadyTracked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidLevel):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userIDFromContext(c)).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
