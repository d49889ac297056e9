package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// ChatHandler wires the assistant relay endpoints including the websocket upgrade.
type ChatHandler struct {
	service   service.ChatService
	validator *validator.Validate
	limiter   fiber.Handler
	logger    zerolog.Logger
}

// NewChatHandler creates a chat handler instance. The limiter, when set, guards the
// HTTP relay endpoint.
func NewChatHandler(service service.ChatService, validator *validator.Validate, limiter fiber.Handler, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: validator,
		limiter:   limiter,
		logger:    logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_ctx", middleware.RequestContext(c))
			c.Locals("session_id", sessionIDFromRequest(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/history", h.history)

	if h.limiter != nil {
		router.Post("", h.limiter, h.reply)
	} else {
		router.Post("", h.reply)
	}
}

func (h *ChatHandler) reply(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = sessionIDFromRequest(c)
	}
	req.UserID = optionalUserID(c)

	reply, err := h.service.Reply(middleware.RequestContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrChatEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("chat relay failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to relay message")
		}
	}

	return utils.SendSuccess(c, "reply generated", reply)
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	sessionID, _ := conn.Locals("session_id").(string)
	correlation, _ := conn.Locals("correlation_id").(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	var userID *uint
	if id, ok := conn.Locals("user_id").(uint); ok && id > 0 {
		userID = &id
	}

	opts := service.ChatConnectionOptions{
		SessionID:     sessionID,
		UserID:        userID,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Str("session_id", sessionID).Msg("chat websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Str("session_id", sessionID).Msg("chat websocket disconnected")
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	query := dto.ChatHistoryQuery{
		SessionID: sessionIDFromRequest(c),
		Limit:     limit,
	}
	if err := h.validator.Struct(query); err != nil {
		return validationFailed(c, err)
	}

	messages, err := h.service.History(middleware.RequestContext(c), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("session_id", query.SessionID).Msg("failed to load chat history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load chat history")
	}

	return utils.OK(c, messages, "chat history", fiber.Map{"session_id": query.SessionID, "count": len(messages)})
}

func sessionIDFromRequest(c *fiber.Ctx) string {
	if session := strings.TrimSpace(c.Query("session_id")); session != "" {
		return session
	}
	return strings.TrimSpace(c.Get(middleware.SessionHeader))
}
