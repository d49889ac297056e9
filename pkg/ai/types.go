package ai

import "context"

// Chat roles accepted from clients. The system role is reserved for the relay.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting returned by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the assistant reply for a conversation.
type Completion struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Assistant describes a language model capable of continuing a conversation.
type Assistant interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}
