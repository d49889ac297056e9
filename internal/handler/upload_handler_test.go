package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/handler"
	"github.com/noah-isme/scholar-hub-api/internal/service"
)

type mockUploadService struct {
	lastUserID *uint
	lastFile   *multipart.FileHeader
	response   dto.UploadResponse
	err        error
}

func (m *mockUploadService) Upload(_ context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error) {
	m.lastFile = file
	m.lastUserID = userID
	if file == nil {
		return dto.UploadResponse{}, service.ErrUploadMissing
	}
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return m.response, nil
}

func newUploadApp(svc service.UploadService) *fiber.App {
	app := fiber.New()
	handler.NewUploadHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v2/uploads", withUser(7)))
	return app
}

func multipartRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandlerSuccess(t *testing.T) {
	svc := &mockUploadService{response: dto.UploadResponse{URL: "https://cdn.example.com/photo.png", SizeBytes: 3, MimeType: "image/png", Checksum: "abc", FileName: "photo.png"}}
	app := newUploadApp(svc)

	resp, err := app.Test(multipartRequest(t, "photo.png", []byte("png")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool               `json:"success"`
		Data    dto.UploadResponse `json:"data"`
		Message string             `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "upload successful", response.Message)
	require.NotNil(t, svc.lastUserID)
	require.Equal(t, uint(7), *svc.lastUserID)
	require.Equal(t, "photo.png", svc.lastFile.Filename)
	require.Equal(t, svc.response.URL, response.Data.URL)
}

func TestUploadHandlerReusedAssetReturnsOK(t *testing.T) {
	svc := &mockUploadService{response: dto.UploadResponse{URL: "https://cdn.example.com/cv.pdf", Reused: true}}
	app := newUploadApp(svc)

	resp, err := app.Test(multipartRequest(t, "cv.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUploadHandlerMissingFile(t *testing.T) {
	app := newUploadApp(&mockUploadService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v2/uploads", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "too large", err: service.ErrUploadTooLarge, status: fiber.StatusRequestEntityTooLarge},
		{name: "bad type", err: service.ErrUploadTypeNotAllowed, status: fiber.StatusUnsupportedMediaType},
		{name: "scan failed", err: service.ErrUploadScanFailed, status: fiber.StatusBadRequest},
		{name: "storage", err: errors.New("cloudinary down"), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newUploadApp(&mockUploadService{err: tc.err})

			resp, err := app.Test(multipartRequest(t, "photo.png", []byte("png")))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var body envelope
			decodeResponse(t, resp, &body)
			require.False(t, body.Success)
		})
	}
}
