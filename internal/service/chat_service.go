package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
	"github.com/noah-isme/scholar-hub-api/pkg/ai"
)

// ChatCompletedSubject is the NATS subject that receives one event per relayed reply.
const ChatCompletedSubject = "chat.completed"

// ErrChatEmptyMessage indicates every message was empty once markup was stripped.
var ErrChatEmptyMessage = errors.New("message content empty after sanitization")

// EventPublisher is the subset of a NATS connection used to emit chat events.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ChatConn is a websocket connection carrying JSON frames.
type ChatConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	SessionID     string
	UserID        *uint
	CorrelationID string
	Context       context.Context
}

// ChatOptions configures the chat relay.
type ChatOptions struct {
	FallbackMessage string
	HistoryLimit    int
}

// ChatService relays conversations from the chat widget to the assistant.
type ChatService interface {
	Reply(ctx context.Context, req dto.ChatRequest) (dto.ChatReplyResponse, error)
	History(ctx context.Context, query dto.ChatHistoryQuery) ([]dto.ChatHistoryItem, error)
	ServeConnection(conn ChatConn, opts ChatConnectionOptions)
}

type chatService struct {
	assistant ai.Assistant
	repo      repository.ChatRepository
	publisher EventPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	options   ChatOptions
	logger    zerolog.Logger
	tracer    trace.Tracer
}

type chatCompletedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      *uint     `json:"user_id,omitempty"`
	Model       string    `json:"model,omitempty"`
	Fallback    bool      `json:"fallback"`
	Messages    int       `json:"messages"`
	TotalTokens int       `json:"total_tokens"`
	CreatedAt   time.Time `json:"created_at"`
}

type chatErrorFrame struct {
	Error string `json:"error"`
}

// NewChatService creates the chat relay. The assistant, repository and publisher are
// optional; without an assistant every reply is the fallback message.
func NewChatService(assistant ai.Assistant, repo repository.ChatRepository, publisher EventPublisher, validate *validator.Validate, opts ChatOptions, logger zerolog.Logger) ChatService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 12
	}
	opts.FallbackMessage = strings.TrimSpace(opts.FallbackMessage)
	if opts.FallbackMessage == "" {
		opts.FallbackMessage = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."
	}

	return &chatService{
		assistant: assistant,
		repo:      repo,
		publisher: publisher,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		options:   opts,
		logger:    logger.With().Str("component", "chat_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/scholar-hub-api/internal/service/chat"),
	}
}

func (s *chatService) Reply(ctx context.Context, req dto.ChatRequest) (dto.ChatReplyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChatReplyResponse{}, err
	}

	messages := s.prepareMessages(req.Messages)
	if len(messages) == 0 {
		return dto.ChatReplyResponse{}, ErrChatEmptyMessage
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	attrs := []attribute.KeyValue{
		attribute.String("chat.session_id", sessionID),
		attribute.Int("chat.messages", len(messages)),
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}
	ctx, span := s.tracer.Start(ctx, "chat.reply", trace.WithAttributes(attrs...))
	defer span.End()

	reply := dto.ChatReplyResponse{SessionID: sessionID}
	completion, err := s.complete(ctx, messages)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("assistant unavailable, sending fallback reply")
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		reply.Reply = s.options.FallbackMessage
		reply.Fallback = true
		observability.ChatReplies().WithLabelValues("fallback").Inc()
	} else {
		span.SetStatus(codes.Ok, "replied")
		reply.Reply = completion.Content
		reply.Model = completion.Model
		observability.ChatReplies().WithLabelValues("upstream").Inc()
	}
	reply.CreatedAt = time.Now().UTC()

	s.persist(ctx, sessionID, req.UserID, messages[len(messages)-1], reply)
	s.publish(sessionID, req.UserID, len(messages), completion.Usage.TotalTokens, reply)

	return reply, nil
}

func (s *chatService) History(ctx context.Context, query dto.ChatHistoryQuery) ([]dto.ChatHistoryItem, error) {
	query.SessionID = strings.TrimSpace(query.SessionID)
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return []dto.ChatHistoryItem{}, nil
	}

	messages, err := s.repo.ListBySession(ctx, query.SessionID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}

	items := make([]dto.ChatHistoryItem, 0, len(messages))
	for _, message := range messages {
		items = append(items, dto.ChatHistoryItem{
			Role:      message.Role,
			Content:   message.Content,
			Fallback:  message.Fallback,
			CreatedAt: message.CreatedAt,
		})
	}
	return items, nil
}

// ServeConnection relays every inbound frame until the client disconnects.
func (s *chatService) ServeConnection(conn ChatConn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if opts.CorrelationID != "" {
		baseCtx = middleware.ContextWithCorrelation(baseCtx, opts.CorrelationID)
	}

	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	for {
		var frame dto.ChatRequest
		if err := conn.ReadJSON(&frame); err != nil {
			s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("chat read loop ended")
			return
		}
		if strings.TrimSpace(frame.SessionID) == "" {
			frame.SessionID = sessionID
		}
		frame.UserID = opts.UserID

		reply, err := s.Reply(baseCtx, frame)
		if err != nil {
			if writeErr := conn.WriteJSON(chatErrorFrame{Error: chatErrorMessage(err)}); writeErr != nil {
				return
			}
			continue
		}
		sessionID = reply.SessionID

		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("chat write loop ended")
			return
		}
	}
}

func (s *chatService) complete(ctx context.Context, messages []ai.Message) (ai.Completion, error) {
	if s.assistant == nil {
		return ai.Completion{}, errors.New("assistant not configured")
	}
	return s.assistant.Complete(ctx, messages)
}

// prepareMessages strips markup and keeps the most recent turns within the history limit.
func (s *chatService) prepareMessages(input []dto.ChatMessageRequest) []ai.Message {
	messages := make([]ai.Message, 0, len(input))
	for _, item := range input {
		content := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(item.Content)))
		if content == "" {
			continue
		}
		role := ai.RoleUser
		if item.Role == ai.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: content})
	}

	if len(messages) > s.options.HistoryLimit {
		messages = messages[len(messages)-s.options.HistoryLimit:]
	}
	return messages
}

func (s *chatService) persist(ctx context.Context, sessionID string, userID *uint, last ai.Message, reply dto.ChatReplyResponse) {
	if s.repo == nil {
		return
	}
	records := []models.ChatMessage{
		{SessionID: sessionID, UserID: userID, Role: last.Role, Content: last.Content, CreatedAt: reply.CreatedAt},
		{SessionID: sessionID, UserID: userID, Role: ai.RoleAssistant, Content: reply.Reply, Model: reply.Model, Fallback: reply.Fallback, CreatedAt: reply.CreatedAt},
	}
	if err := s.repo.SaveBatch(ctx, records); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to persist chat turn")
	}
}

func (s *chatService) publish(sessionID string, userID *uint, messages, tokens int, reply dto.ChatReplyResponse) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(chatCompletedEvent{
		SessionID:   sessionID,
		UserID:      userID,
		Model:       reply.Model,
		Fallback:    reply.Fallback,
		Messages:    messages,
		TotalTokens: tokens,
		CreatedAt:   reply.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode chat event")
		return
	}
	if err := s.publisher.Publish(ChatCompletedSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish chat event")
	}
}

func chatErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return "invalid chat payload"
	}
	if errors.Is(err, ErrChatEmptyMessage) {
		return err.Error()
	}
	return "unable to process message"
}
