package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func newAuthApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/me", handler, func(c *fiber.Ctx) error {
		id, _ := c.Locals("user_id").(uint)
		return c.JSON(fiber.Map{"user_id": id})
	})
	return app
}

func TestJWTProtected(t *testing.T) {
	app := newAuthApp(JWTProtected(testSecret))
	expires := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "1", "exp": expires}), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()}), status: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": expires}), status: http.StatusUnauthorized},
		{name: "string subject", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "42", "exp": expires}), status: http.StatusOK},
		{name: "numeric user id", header: "bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": 42, "exp": expires}), status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestJWTOptionalAllowsAnonymous(t *testing.T) {
	app := newAuthApp(JWTOptional(testSecret))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitKeysBySession(t *testing.T) {
	app := fiber.New()
	app.Get("/chat", RateLimit("chat", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	send := func(session string) int {
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		req.Header.Set(SessionHeader, session)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, http.StatusNoContent, send("a"))
	require.Equal(t, http.StatusTooManyRequests, send("a"))
	require.Equal(t, http.StatusNoContent, send("b"))
}

func TestCorrelationIDPropagation(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(CorrelationIDFromContext(RequestContext(c)))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "abc-123", resp.Header.Get(CorrelationHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "has spaces")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.NotEqual(t, "has spaces", resp.Header.Get(CorrelationHeader))
	require.NotEmpty(t, resp.Header.Get(CorrelationHeader))
}
