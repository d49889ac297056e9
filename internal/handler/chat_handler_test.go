package handler_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/handler"
	"github.com/noah-isme/scholar-hub-api/internal/middleware"
	"github.com/noah-isme/scholar-hub-api/internal/service"
	"github.com/noah-isme/scholar-hub-api/pkg/ai"
)

type stubAssistant struct {
	mu       sync.Mutex
	calls    [][]ai.Message
	err      error
	response string
}

func (s *stubAssistant) Complete(_ context.Context, messages []ai.Message) (ai.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return ai.Completion{}, s.err
	}
	return ai.Completion{Content: s.response, Model: "openai/gpt-4o-mini"}, nil
}

func newChatApp(t *testing.T, assistant ai.Assistant, limiter fiber.Handler) *fiber.App {
	t.Helper()
	validate := validator.New()
	svc := service.NewChatService(assistant, nil, nil, validate, service.ChatOptions{FallbackMessage: "try again later"}, zerolog.Nop())

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	handler.NewChatHandler(svc, validate, limiter, zerolog.Nop()).Register(app.Group("/api/v1/chat"))
	return app
}

func TestChatHandlerReply(t *testing.T) {
	assistant := &stubAssistant{response: "Aim for a 9 in Maths 2."}
	app := newChatApp(t, assistant, nil)

	payload := dto.ChatRequest{Messages: []dto.ChatMessageRequest{{Role: "user", Content: "How do I improve my CGPA?"}}}
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/chat", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply dto.ChatReplyResponse
	decodeRaw(t, body.Data, &reply)
	require.Equal(t, "Aim for a 9 in Maths 2.", reply.Reply)
	require.False(t, reply.Fallback)
	require.NotEmpty(t, reply.SessionID)
}

func TestChatHandlerFallsBackWhenAssistantFails(t *testing.T) {
	app := newChatApp(t, &stubAssistant{err: errors.New("upstream 502")}, nil)

	payload := dto.ChatRequest{SessionID: "s-1", Messages: []dto.ChatMessageRequest{{Role: "user", Content: "hello"}}}
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/chat", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply dto.ChatReplyResponse
	decodeRaw(t, body.Data, &reply)
	require.True(t, reply.Fallback)
	require.Equal(t, "try again later", reply.Reply)
	require.Equal(t, "s-1", reply.SessionID)
}

func TestChatHandlerRejectsInvalidPayload(t *testing.T) {
	app := newChatApp(t, &stubAssistant{}, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/chat", dto.ChatRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "validation failed", body.Message)

	payload := dto.ChatRequest{Messages: []dto.ChatMessageRequest{{Role: "user", Content: "<b></b>"}}}
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/chat", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, service.ErrChatEmptyMessage.Error(), body.Message)
}

func TestChatHandlerRateLimited(t *testing.T) {
	app := newChatApp(t, &stubAssistant{response: "ok"}, middleware.RateLimit("chat", 1, time.Minute))
	payload := dto.ChatRequest{Messages: []dto.ChatMessageRequest{{Role: "user", Content: "hi"}}}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/chat", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/chat", payload)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.False(t, body.Success)
}

func TestChatHandlerHistoryRequiresSession(t *testing.T) {
	app := newChatApp(t, &stubAssistant{}, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/chat/history", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/chat/history?session_id=s-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[]`, string(body.Data))

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/chat/history?session_id=s-1&limit=many", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatHandlerWebsocketRelay(t *testing.T) {
	assistant := &stubAssistant{response: "Quiz 2 carries 20% in Stats 1."}
	app := newChatApp(t, assistant, nil)

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/chat/ws?session_id=widget-1"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, http.Header{middleware.CorrelationHeader: {"ws-test"}})
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	require.NoError(t, conn.WriteJSON(dto.ChatRequest{Messages: []dto.ChatMessageRequest{{Role: "user", Content: "weights for stats?"}}}))
	var reply dto.ChatReplyResponse
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "widget-1", reply.SessionID)
	require.Equal(t, "Quiz 2 carries 20% in Stats 1.", reply.Reply)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"messages": []interface{}{}}))
	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "invalid chat payload", frame["error"])
}

func TestChatHandlerWebsocketRequiresUpgrade(t *testing.T) {
	app := newChatApp(t, &stubAssistant{}, nil)

	resp, err := app.Test(httptestRequest(http.MethodGet, "/api/v1/chat/ws"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func startFiberServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
