package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// ResumeHandler exposes the resume builder endpoints.
type ResumeHandler struct {
	service   service.ResumeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewResumeHandler constructs a resume handler.
func NewResumeHandler(service service.ResumeService, validate *validator.Validate, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "resume_handler").Logger(),
	}
}

// Register wires resume routes.
func (h *ResumeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ResumeHandler) list(c *fiber.Ctx) error {
	resumes, err := h.service.List(middleware.RequestContext(c), userIDFromContext(c))
	if err != nil {
		return h.resumeError(c, err, "failed to list resumes")
	}
	return utils.OK(c, resumes, "resumes retrieved", fiber.Map{"count": len(resumes)})
}

func (h *ResumeHandler) create(c *fiber.Ctx) error {
	var req dto.ResumeRequest
	if ok, err := h.bindRequest(c, &req); !ok {
		return err
	}

	resume, err := h.service.Create(middleware.RequestContext(c), userIDFromContext(c), req)
	if err != nil {
		return h.resumeError(c, err, "failed to create resume")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resume created", resume)
}

func (h *ResumeHandler) get(c *fiber.Ctx) error {
	resume, err := h.service.Get(middleware.RequestContext(c), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.resumeError(c, err, "failed to load resume")
	}
	return utils.SendSuccess(c, "resume retrieved", resume)
}

func (h *ResumeHandler) update(c *fiber.Ctx) error {
	var req dto.ResumeRequest
	if ok, err := h.bindRequest(c, &req); !ok {
		return err
	}

	resume, err := h.service.Update(middleware.RequestContext(c), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return h.resumeError(c, err, "failed to update resume")
	}
	return utils.SendSuccess(c, "resume updated", resume)
}

func (h *ResumeHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(middleware.RequestContext(c), userIDFromContext(c), c.Params("id")); err != nil {
		return h.resumeError(c, err, "failed to delete resume")
	}
	return utils.SendSuccess(c, "resume deleted", nil)
}

// bindRequest reports false after writing the error response for an unusable body.
func (h *ResumeHandler) bindRequest(c *fiber.Ctx, req *dto.ResumeRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func (h *ResumeHandler) resumeError(c *fiber.Ctx, err error, message string) error {
	var validationErr *service.ResumeValidationError
	switch {
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, service.ErrResumeInvalid.Error(), validationErr.Violations)
	case errors.Is(err, service.ErrResumeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userIDFromContext(c)).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
