package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/handler"
	"github.com/noah-isme/scholar-hub-api/internal/service"
)

type stubResumeService struct {
	resume     dto.ResumeResponse
	err        error
	lastUserID uint
	lastID     string
	lastReq    dto.ResumeRequest
}

func (s *stubResumeService) Create(_ context.Context, userID uint, req dto.ResumeRequest) (dto.ResumeResponse, error) {
	s.lastUserID, s.lastReq = userID, req
	return s.resume, s.err
}

func (s *stubResumeService) Get(_ context.Context, userID uint, id string) (dto.ResumeResponse, error) {
	s.lastUserID, s.lastID = userID, id
	return s.resume, s.err
}

func (s *stubResumeService) List(_ context.Context, userID uint) ([]dto.ResumeResponse, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return []dto.ResumeResponse{s.resume}, nil
}

func (s *stubResumeService) Update(_ context.Context, userID uint, id string, req dto.ResumeRequest) (dto.ResumeResponse, error) {
	s.lastUserID, s.lastID, s.lastReq = userID, id, req
	return s.resume, s.err
}

func (s *stubResumeService) Delete(_ context.Context, userID uint, id string) error {
	s.lastUserID, s.lastID = userID, id
	return s.err
}

func newResumeApp(svc service.ResumeService) *fiber.App {
	app := fiber.New()
	handler.NewResumeHandler(svc, validator.New(), zerolog.Nop()).Register(app.Group("/api/v2/resumes", withUser(3)))
	return app
}

func TestResumeHandlerCreate(t *testing.T) {
	svc := &stubResumeService{resume: dto.ResumeResponse{ID: "7f9c", Title: "Internship CV", Template: "classic", Document: json.RawMessage(`{}`), CreatedAt: time.Now()}}
	app := newResumeApp(svc)

	payload := map[string]interface{}{
		"title":    "Internship CV",
		"document": map[string]interface{}{"basics": map[string]string{"name": "Asha", "email": "asha@example.com"}},
	}
	resp, body := doJSON(t, app, http.MethodPost, "/api/v2/resumes", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)
	require.Equal(t, uint(3), svc.lastUserID)
	require.JSONEq(t, `{"basics": {"name": "Asha", "email": "asha@example.com"}}`, string(svc.lastReq.Document))
}

func TestResumeHandlerValidation(t *testing.T) {
	svc := &stubResumeService{}
	app := newResumeApp(svc)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v2/resumes", map[string]interface{}{"title": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "validation failed", body.Message)
	require.Zero(t, svc.lastUserID)
}

func TestResumeHandlerSchemaViolations(t *testing.T) {
	svc := &stubResumeService{err: &service.ResumeValidationError{Violations: []string{"/basics: missing properties: 'email'"}}}
	app := newResumeApp(svc)

	payload := map[string]interface{}{"title": "Broken", "document": map[string]interface{}{"basics": map[string]string{"name": "Asha"}}}
	resp, body := doJSON(t, app, http.MethodPut, "/api/v2/resumes/7f9c", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, service.ErrResumeInvalid.Error(), body.Message)
	require.JSONEq(t, `["/basics: missing properties: 'email'"]`, string(body.Details))
	require.Equal(t, "7f9c", svc.lastID)
}

func TestResumeHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: service.ErrResumeNotFound, status: http.StatusNotFound},
		{name: "database", err: errors.New("connection reset"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newResumeApp(&stubResumeService{err: tc.err})

			resp, _ := doJSON(t, app, http.MethodGet, "/api/v2/resumes/abc", nil)
			require.Equal(t, tc.status, resp.StatusCode)

			resp, _ = doJSON(t, app, http.MethodDelete, "/api/v2/resumes/abc", nil)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestResumeHandlerList(t *testing.T) {
	app := newResumeApp(&stubResumeService{resume: dto.ResumeResponse{ID: "a", Title: "CV"}})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v2/resumes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"count": 1}`, string(body.Meta))
}
