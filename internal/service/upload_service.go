package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
)

var (
	// ErrUploadMissing indicates the request carried no file.
	ErrUploadMissing = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("only PNG, JPEG, WebP images and PDF documents are allowed")
	// ErrUploadScanFailed indicates validation of the file contents failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
)

// Asset kinds accepted by the upload service.
const (
	AssetKindImage = "image"
	AssetKindPDF   = "pdf"
)

var allowedUploadTypes = map[string]string{
	"image/png":       AssetKindImage,
	"image/jpeg":      AssetKindImage,
	"image/webp":      AssetKindImage,
	"application/pdf": AssetKindPDF,
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name, kind string, reader io.Reader) (string, error)
}

// UploadService handles validation and persistence of resume photos and exported PDFs.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	repo    repository.UploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, repo repository.UploadRepository, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &uploadService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/scholar-hub-api/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))
	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		return dto.UploadResponse{}, failSpan(span, ErrUploadMissing, "validation failed")
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, failSpan(span, ErrUploadTooLarge, "payload too large")
	}

	handle, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, failSpan(span, fmt.Errorf("open upload: %w", err), "open failed")
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return dto.UploadResponse{}, failSpan(span, fmt.Errorf("read upload: %w", err), "read failed")
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, failSpan(span, ErrUploadTooLarge, "payload too large")
	}

	detected := mimetype.Detect(buf.Bytes())
	mimeType := strings.ToLower(detected.String())
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	span.SetAttributes(attribute.String("upload.detected_mime", mimeType))

	kind, ok := allowedUploadTypes[mimeType]
	if !ok {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return dto.UploadResponse{}, failSpan(span, ErrUploadTypeNotAllowed, "type not allowed")
	}

	if err := scanUpload(buf.Bytes(), kind); err != nil {
		observability.UploadRejected().WithLabelValues("scan").Inc()
		return dto.UploadResponse{}, failSpan(span, err, "scan failed")
	}

	sum := sha256.Sum256(buf.Bytes())
	checksum := hex.EncodeToString(sum[:])
	sanitizedName := sanitizeFileName(file.Filename, detected.Extension())

	if userID != nil {
		span.SetAttributes(attribute.Int("upload.user_id", int(*userID)))
		existing, err := s.repo.FindByChecksum(ctx, *userID, checksum)
		if err == nil {
			observability.UploadRequests().WithLabelValues(kind).Inc()
			span.SetStatus(codes.Ok, "reused")
			return toUploadResponse(existing, true), nil
		}
		if !errors.Is(err, repository.ErrRecordNotFound) {
			return dto.UploadResponse{}, failSpan(span, fmt.Errorf("lookup upload checksum: %w", err), "lookup failed")
		}
	}

	url, err := s.storage.Upload(ctx, sanitizedName, kind, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return dto.UploadResponse{}, failSpan(span, fmt.Errorf("store upload: %w", err), "storage failed")
	}

	record := models.UploadRecord{
		UserID:    userID,
		FileName:  sanitizedName,
		URL:       url,
		MimeType:  mimeType,
		SizeBytes: int64(buf.Len()),
		Checksum:  checksum,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.UploadResponse{}, failSpan(span, fmt.Errorf("persist upload: %w", err), "persistence failed")
	}

	observability.UploadRequests().WithLabelValues(kind).Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Str("file_name", sanitizedName).Str("mime_type", mimeType).Int64("size_bytes", record.SizeBytes).Msg("upload stored")

	return toUploadResponse(record, false), nil
}

func failSpan(span trace.Span, err error, status string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}

// scanUpload rejects PDFs that are truncated or carry embedded scripts.
func scanUpload(payload []byte, kind string) error {
	if kind != AssetKindPDF {
		return nil
	}
	if !bytes.Contains(payload, []byte("%%EOF")) {
		return fmt.Errorf("pdf is truncated: %w", ErrUploadScanFailed)
	}
	for _, marker := range [][]byte{[]byte("/JavaScript"), []byte("/Launch")} {
		if bytes.Contains(payload, marker) {
			return fmt.Errorf("pdf contains active content: %w", ErrUploadScanFailed)
		}
	}
	return nil
}

func toUploadResponse(record models.UploadRecord, reused bool) dto.UploadResponse {
	return dto.UploadResponse{
		URL:       record.URL,
		SizeBytes: record.SizeBytes,
		MimeType:  record.MimeType,
		Checksum:  record.Checksum,
		FileName:  record.FileName,
		Reused:    reused,
	}
}

func sanitizeFileName(name, detectedExt string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(detectedExt)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(name))
	}
	return base + ext
}
