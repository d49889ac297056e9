package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOpenRouterBaseURL is the OpenAI compatible endpoint of OpenRouter.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ErrEmptyCompletion indicates the provider answered without any choices.
var ErrEmptyCompletion = errors.New("no choices returned from model")

var (
	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scholar",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of chat completion requests",
	}, []string{"model"})

	completionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholar",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of chat completion failures",
	}, []string{"model"})
)

// OpenRouterConfig defines configuration options for the OpenRouter assistant.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	SiteURL      string
	AppTitle     string
	MaxTokens    int
	Temperature  float32
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// OpenRouterAssistant implements Assistant against OpenRouter's chat completion API.
type OpenRouterAssistant struct {
	client *openai.Client
	cfg    OpenRouterConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenRouterAssistant builds a new assistant using the provided configuration.
func NewOpenRouterAssistant(cfg OpenRouterConfig) (*OpenRouterAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 800
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	tracer := otel.Tracer("github.com/noah-isme/scholar-hub-api/pkg/ai/openrouter")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	config.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: attributionTransport{
			base:     http.DefaultTransport,
			referer:  cfg.SiteURL,
			appTitle: cfg.AppTitle,
		},
	}

	return &OpenRouterAssistant{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "openrouter").Logger(),
	}, nil
}

// Complete prepends the system prompt and forwards the conversation upstream.
func (a *OpenRouterAssistant) Complete(parent context.Context, messages []Message) (Completion, error) {
	ctx, span := a.tracer.Start(parent, "openrouter.complete", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.Int("chat.messages", len(messages)),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages:    buildMessages(a.cfg.SystemPrompt, messages),
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	completionDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return Completion{}, a.fail(span, fmt.Errorf("openrouter complete: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Completion{}, a.fail(span, ErrEmptyCompletion)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Completion{}, a.fail(span, ErrEmptyCompletion)
	}

	model := resp.Model
	if model == "" {
		model = a.cfg.Model
	}

	a.logger.Debug().Str("model", model).Int("total_tokens", resp.Usage.TotalTokens).Msg("chat completion received")
	span.SetStatus(codes.Ok, "completed")

	return Completion{
		Content: content,
		Model:   model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (a *OpenRouterAssistant) fail(span trace.Span, err error) error {
	completionFailures.WithLabelValues(a.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func buildMessages(systemPrompt string, messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if prompt := strings.TrimSpace(systemPrompt); prompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	for _, message := range messages {
		role := openai.ChatMessageRoleUser
		if message.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: message.Content,
		})
	}
	return out
}

// attributionTransport adds the headers OpenRouter uses for app attribution.
type attributionTransport struct {
	base     http.RoundTripper
	referer  string
	appTitle string
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.referer != "" {
		clone.Header.Set("HTTP-Referer", t.referer)
	}
	if t.appTitle != "" {
		clone.Header.Set("X-Title", t.appTitle)
	}
	return t.base.RoundTrip(clone)
}
