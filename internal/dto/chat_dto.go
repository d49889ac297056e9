package dto

import "time"

// ChatMessageRequest is a single conversation turn sent by the widget.
type ChatMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// ChatRequest relays a conversation to the assistant.
type ChatRequest struct {
	SessionID string               `json:"session_id" validate:"omitempty,max=64"`
	Messages  []ChatMessageRequest `json:"messages" validate:"required,min=1,max=20,dive"`
	UserID    *uint                `json:"-"`
}

// ChatReplyResponse is the assistant reply returned to the widget.
type ChatReplyResponse struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	Model     string    `json:"model,omitempty"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryQuery describes the history lookup parameters.
type ChatHistoryQuery struct {
	SessionID string `validate:"required,max=64"`
	Limit     int    `validate:"omitempty,min=1,max=100"`
}

// ChatHistoryItem is one persisted turn.
type ChatHistoryItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}
