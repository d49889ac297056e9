package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// UploadHandler accepts resume photos and exported resume PDFs.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	// a missing file is rejected by the service
	file, _ := c.FormFile("file")

	result, err := h.service.Upload(middleware.RequestContext(c), file, optionalUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrUploadMissing), errors.Is(err, service.ErrUploadScanFailed):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "upload failed")
		}
	}

	status := fiber.StatusCreated
	if result.Reused {
		status = fiber.StatusOK
	}
	return utils.SendSuccessWithStatus(c, status, "upload successful", result)
}
