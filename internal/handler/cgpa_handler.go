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

// CGPAHandler exposes the stateless CGPA calculator.
type CGPAHandler struct {
	service   service.GradeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCGPAHandler constructs a calculator handler.
func NewCGPAHandler(service service.GradeService, validate *validator.Validate, logger zerolog.Logger) *CGPAHandler {
	return &CGPAHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "cgpa_handler").Logger(),
	}
}

// Register wires calculator routes.
func (h *CGPAHandler) Register(router fiber.Router) {
	router.Post("/calculate", h.calculate)
}

func (h *CGPAHandler) calculate(c *fiber.Ctx) error {
	var req dto.CGPACalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.service.Calculate(req, c.Query("level"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidLevel) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("cgpa calculation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to calculate cgpa")
	}

	return utils.SendSuccess(c, "cgpa calculated", result)
}
