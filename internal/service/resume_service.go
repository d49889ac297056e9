package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
)

var (
	// ErrResumeNotFound indicates the resume does not exist or belongs to someone else.
	ErrResumeNotFound = errors.New("resume not found")
	// ErrResumeInvalid indicates the document failed schema validation.
	ErrResumeInvalid = errors.New("resume document is invalid")
)

//go:embed schemas/resume.schema.json
var resumeSchemaJSON []byte

const resumeSchemaURL = "resume.schema.json"

// ResumeValidationError carries the schema violations of a rejected document.
type ResumeValidationError struct {
	Violations []string
}

func (e *ResumeValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrResumeInvalid.Error(), strings.Join(e.Violations, "; "))
}

// Unwrap lets callers match the error with errors.Is(err, ErrResumeInvalid).
func (e *ResumeValidationError) Unwrap() error {
	return ErrResumeInvalid
}

// ResumeService manages resume builder documents.
type ResumeService interface {
	Create(ctx context.Context, userID uint, req dto.ResumeRequest) (dto.ResumeResponse, error)
	Get(ctx context.Context, userID uint, id string) (dto.ResumeResponse, error)
	List(ctx context.Context, userID uint) ([]dto.ResumeResponse, error)
	Update(ctx context.Context, userID uint, id string, req dto.ResumeRequest) (dto.ResumeResponse, error)
	Delete(ctx context.Context, userID uint, id string) error
}

type resumeService struct {
	repo      repository.ResumeRepository
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewResumeService constructs the resume service and compiles the document schema.
func NewResumeService(repo repository.ResumeRepository, logger zerolog.Logger) (ResumeService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resumeSchemaURL, bytes.NewReader(resumeSchemaJSON)); err != nil {
		return nil, fmt.Errorf("load resume schema: %w", err)
	}
	schema, err := compiler.Compile(resumeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile resume schema: %w", err)
	}

	return &resumeService{
		repo:      repo,
		schema:    schema,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "resume_service").Logger(),
	}, nil
}

func (s *resumeService) Create(ctx context.Context, userID uint, req dto.ResumeRequest) (dto.ResumeResponse, error) {
	document, err := s.prepareDocument(req.Document)
	if err != nil {
		return dto.ResumeResponse{}, err
	}

	resume := models.Resume{
		PublicID: uuid.NewString(),
		UserID:   userID,
		Title:    s.sanitizeText(req.Title),
		Template: normalizeTemplate(req.Template),
		PhotoURL: strings.TrimSpace(req.PhotoURL),
		Document: document,
	}
	if err := s.repo.Create(ctx, &resume); err != nil {
		return dto.ResumeResponse{}, fmt.Errorf("create resume: %w", err)
	}

	s.logger.Info().Uint("user_id", userID).Str("resume_id", resume.PublicID).Msg("resume created")
	return toResumeResponse(resume), nil
}

func (s *resumeService) Get(ctx context.Context, userID uint, id string) (dto.ResumeResponse, error) {
	resume, err := s.load(ctx, userID, id)
	if err != nil {
		return dto.ResumeResponse{}, err
	}
	return toResumeResponse(resume), nil
}

func (s *resumeService) List(ctx context.Context, userID uint) ([]dto.ResumeResponse, error) {
	resumes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	items := make([]dto.ResumeResponse, 0, len(resumes))
	for _, resume := range resumes {
		items = append(items, toResumeResponse(resume))
	}
	return items, nil
}

func (s *resumeService) Update(ctx context.Context, userID uint, id string, req dto.ResumeRequest) (dto.ResumeResponse, error) {
	resume, err := s.load(ctx, userID, id)
	if err != nil {
		return dto.ResumeResponse{}, err
	}

	document, err := s.prepareDocument(req.Document)
	if err != nil {
		return dto.ResumeResponse{}, err
	}

	resume.Title = s.sanitizeText(req.Title)
	resume.Template = normalizeTemplate(req.Template)
	resume.PhotoURL = strings.TrimSpace(req.PhotoURL)
	resume.Document = document
	if err := s.repo.Save(ctx, &resume); err != nil {
		return dto.ResumeResponse{}, fmt.Errorf("update resume: %w", err)
	}
	return toResumeResponse(resume), nil
}

func (s *resumeService) Delete(ctx context.Context, userID uint, id string) error {
	affected, err := s.repo.Delete(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if affected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (s *resumeService) load(ctx context.Context, userID uint, id string) (models.Resume, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return models.Resume{}, ErrResumeNotFound
	}
	resume, err := s.repo.GetByPublicID(ctx, userID, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return models.Resume{}, ErrResumeNotFound
	}
	if err != nil {
		return models.Resume{}, fmt.Errorf("load resume: %w", err)
	}
	return resume, nil
}

// prepareDocument validates the raw document against the schema and strips markup
// from every string value.
func (s *resumeService) prepareDocument(raw json.RawMessage) (datatypes.JSON, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ResumeValidationError{Violations: []string{"document must be valid JSON"}}
	}

	if err := s.schema.Validate(decoded); err != nil {
		return nil, &ResumeValidationError{Violations: schemaViolations(err)}
	}

	cleaned, err := json.Marshal(s.sanitizeValue(decoded))
	if err != nil {
		return nil, fmt.Errorf("encode resume document: %w", err)
	}
	return datatypes.JSON(cleaned), nil
}

func (s *resumeService) sanitizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return s.sanitizeText(v)
	case []interface{}:
		for i := range v {
			v[i] = s.sanitizeValue(v[i])
		}
		return v
	case map[string]interface{}:
		for key, item := range v {
			v[key] = s.sanitizeValue(item)
		}
		return v
	default:
		return v
	}
}

func (s *resumeService) sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func schemaViolations(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	var violations []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "/"
			}
			violations = append(violations, fmt.Sprintf("%s: %s", location, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return violations
}

func normalizeTemplate(template string) string {
	switch strings.ToLower(strings.TrimSpace(template)) {
	case "modern":
		return "modern"
	case "compact":
		return "compact"
	default:
		return "classic"
	}
}

func toResumeResponse(resume models.Resume) dto.ResumeResponse {
	return dto.ResumeResponse{
		ID:        resume.PublicID,
		Title:     resume.Title,
		Template:  resume.Template,
		PhotoURL:  resume.PhotoURL,
		Document:  json.RawMessage(resume.Document),
		CreatedAt: resume.CreatedAt,
		UpdatedAt: resume.UpdatedAt,
	}
}
