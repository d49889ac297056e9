package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// PredictorHandler exposes the end-term predictor and its subject formulae.
type PredictorHandler struct {
	service   service.GradeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPredictorHandler constructs a predictor handler.
func NewPredictorHandler(service service.GradeService, validate *validator.Validate, logger zerolog.Logger) *PredictorHandler {
	return &PredictorHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "predictor_handler").Logger(),
	}
}

// Register wires predictor routes.
func (h *PredictorHandler) Register(router fiber.Router) {
	router.Post("/predict", h.predict)
	router.Get("/subjects", h.subjects)
	router.Get("/subjects/:code", h.subject)
}

func (h *PredictorHandler) predict(c *fiber.Ctx) error {
	var req dto.PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	prediction, err := h.service.Predict(req)
	if err != nil {
		return h.subjectError(c, err)
	}

	return utils.SendSuccess(c, "prediction calculated", prediction)
}

func (h *PredictorHandler) subjects(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "subjects retrieved", h.service.Subjects())
}

func (h *PredictorHandler) subject(c *fiber.Ctx) error {
	subject, err := h.service.Subject(c.Params("code"))
	if err != nil {
		return h.subjectError(c, err)
	}
	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *PredictorHandler) subjectError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSubjectNotSupported):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("predictor request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to run predictor")
	}
}
