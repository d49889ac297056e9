package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func decodeRaw(t *testing.T, raw json.RawMessage, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, target))
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func bytesReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope
	decodeResponse(t, resp, &env)
	return resp, env
}

// withUser simulates the JWT middleware.
func withUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		return c.Next()
	}
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func requireMatchesSchema(t *testing.T, schema *jsonschema.Schema, raw []byte) {
	t.Helper()
	var document interface{}
	require.NoError(t, json.Unmarshal(raw, &document))
	require.NoError(t, schema.Validate(document))
}
