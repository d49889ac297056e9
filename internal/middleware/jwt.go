package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/scholar-hub-api/internal/utils"
)

var (
	errMissingAuthorization = errors.New("authorization header missing")
	errInvalidAuthorization = errors.New("invalid authorization header")
	errInvalidToken         = errors.New("invalid token")
	errMissingSubject       = errors.New("token subject missing")
)

// JWTProtected returns a middleware that requires a valid bearer token carrying a user id.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authenticate(c, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// JWTOptional attaches the user id when a valid bearer token is present and
// lets anonymous requests through untouched.
func JWTOptional(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if userID, err := authenticate(c, secret); err == nil {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, secret string) (uint, error) {
	authorization := c.Get(fiber.HeaderAuthorization)
	if authorization == "" {
		return 0, errMissingAuthorization
	}

	const bearer = "Bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return 0, errInvalidAuthorization
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return 0, errInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}

	userID := extractUserIDFromClaims(claims)
	if userID == nil || *userID == 0 {
		return 0, errMissingSubject
	}
	return *userID, nil
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
