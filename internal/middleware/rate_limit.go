package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

// RateLimit creates a limiter keyed by user id, then session id, then client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 20
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", identifier, rateLimitSubject(c))
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(uint); ok && id > 0 {
		return fmt.Sprintf("user:%d", id)
	}
	if session := strings.TrimSpace(c.Get(SessionHeader)); session != "" {
		return "session:" + session
	}
	return "ip:" + c.IP()
}
