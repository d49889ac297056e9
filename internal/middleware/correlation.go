package middleware

import (
	"context"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Headers understood by the API.
const (
	CorrelationHeader = "X-Correlation-ID"
	SessionHeader     = "X-Session-ID"
)

const maxCorrelationLength = 128

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

// CorrelationID middleware ensures every request carries a correlation identifier.
// Client supplied identifiers are accepted when short and printable.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := sanitizeCorrelation(c.Get(CorrelationHeader))
		if incoming == "" {
			incoming = sanitizeCorrelation(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals("correlation_id", incoming)
		c.Set(CorrelationHeader, incoming)

		ctx := context.WithValue(c.Context(), correlationKey, incoming)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func sanitizeCorrelation(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || len(value) > maxCorrelationLength {
		return ""
	}
	for _, r := range value {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return value
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(correlationID) == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey, strings.TrimSpace(correlationID))
}

// RequestContext returns the request's user context carrying its correlation id.
func RequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ContextWithCorrelation(ctx, GetCorrelationID(c))
}
