package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
	"github.com/noah-isme/scholar-hub-api/pkg/grade"
)

var (
	// ErrCourseNotFound indicates the course code is not part of any catalog.
	ErrCourseNotFound = errors.New("course not found in catalog")
	// ErrCourseAlreadyTracked indicates the course is already on the student's tracker.
	ErrCourseAlreadyTracked = errors.New("course already tracked")
	// ErrEntryNotFound indicates the student is not tracking the course.
	ErrEntryNotFound = errors.New("tracked course not found")
	// ErrInvalidLevel indicates an unknown programme level.
	ErrInvalidLevel = errors.New("invalid programme level")
)

// TrackerService manages the per-student grade tracker.
type TrackerService interface {
	ListEntries(ctx context.Context, userID uint) ([]dto.TrackerEntryResponse, error)
	AddCourse(ctx context.Context, userID uint, req dto.TrackerAddRequest) (dto.TrackerEntryResponse, error)
	UpdateEntry(ctx context.Context, userID uint, code string, req dto.TrackerUpdateRequest) (dto.TrackerEntryResponse, error)
	RemoveCourse(ctx context.Context, userID uint, code string) error
	ResetLevel(ctx context.Context, userID uint, level string) (int64, error)
	Summary(ctx context.Context, userID uint) (dto.TrackerSummaryResponse, error)
	SetProgramLevel(ctx context.Context, userID uint, level string) (grade.Level, error)
	ProgramLevel(ctx context.Context, userID uint) (grade.Level, error)
}

type trackerService struct {
	repo      repository.CourseRecordRepository
	cache     *redis.Client
	summaries jsonCache
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewTrackerService constructs the tracker service. A nil cache disables summary caching
// and keeps the programme level at its default.
func NewTrackerService(repo repository.CourseRecordRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) TrackerService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger = logger.With().Str("component", "tracker_service").Logger()
	return &trackerService{
		repo:      repo,
		cache:     cache,
		summaries: newJSONCache(cache, ttl, logger),
		tracer:    otel.Tracer("github.com/noah-isme/scholar-hub-api/internal/service/tracker"),
		logger:    logger,
	}
}

func (s *trackerService) ListEntries(ctx context.Context, userID uint) ([]dto.TrackerEntryResponse, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tracked courses: %w", err)
	}

	items := make([]dto.TrackerEntryResponse, 0, len(records))
	for _, record := range records {
		entry, ok := entryFromRecord(record)
		if !ok {
			s.logger.Warn().Str("course_code", record.CourseCode).Uint("user_id", userID).Msg("tracked course missing from catalog")
			continue
		}
		items = append(items, toTrackerEntryResponse(entry, record.UpdatedAt))
	}
	return items, nil
}

func (s *trackerService) AddCourse(ctx context.Context, userID uint, req dto.TrackerAddRequest) (dto.TrackerEntryResponse, error) {
	course, ok := grade.LookupCourse(req.CourseCode)
	if !ok {
		return dto.TrackerEntryResponse{}, ErrCourseNotFound
	}

	if _, err := s.repo.Get(ctx, userID, course.Code); err == nil {
		return dto.TrackerEntryResponse{}, ErrCourseAlreadyTracked
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return dto.TrackerEntryResponse{}, fmt.Errorf("lookup tracked course: %w", err)
	}

	include := true
	if req.IncludeInCGPA != nil {
		include = *req.IncludeInCGPA
	}
	entry := grade.NewCourseEntry(course, grade.ParseGrade(req.Grade), include)

	record := models.CourseRecord{
		UserID:        userID,
		CourseCode:    course.Code,
		Level:         string(course.Level),
		Grade:         string(entry.Grade),
		IncludeInCGPA: entry.IncludeInCGPA,
	}
	if err := s.repo.Create(ctx, &record); errors.Is(err, repository.ErrRecordExists) {
		return dto.TrackerEntryResponse{}, ErrCourseAlreadyTracked
	} else if err != nil {
		return dto.TrackerEntryResponse{}, fmt.Errorf("create tracked course: %w", err)
	}

	s.afterMutation(ctx, userID, "add")
	return toTrackerEntryResponse(entry, record.UpdatedAt), nil
}

func (s *trackerService) UpdateEntry(ctx context.Context, userID uint, code string, req dto.TrackerUpdateRequest) (dto.TrackerEntryResponse, error) {
	course, ok := grade.LookupCourse(code)
	if !ok {
		return dto.TrackerEntryResponse{}, ErrCourseNotFound
	}

	record, err := s.repo.Get(ctx, userID, course.Code)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return dto.TrackerEntryResponse{}, ErrEntryNotFound
	}
	if err != nil {
		return dto.TrackerEntryResponse{}, fmt.Errorf("lookup tracked course: %w", err)
	}

	entry, _ := entryFromRecord(record)
	if req.Grade != nil {
		entry.SetGrade(grade.ParseGrade(*req.Grade))
	}
	if req.IncludeInCGPA != nil {
		entry.SetInclude(*req.IncludeInCGPA)
	}

	record.Grade = string(entry.Grade)
	record.IncludeInCGPA = entry.IncludeInCGPA
	if err := s.repo.Save(ctx, &record); err != nil {
		return dto.TrackerEntryResponse{}, fmt.Errorf("update tracked course: %w", err)
	}

	s.afterMutation(ctx, userID, "update")
	return toTrackerEntryResponse(entry, record.UpdatedAt), nil
}

func (s *trackerService) RemoveCourse(ctx context.Context, userID uint, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	affected, err := s.repo.Delete(ctx, userID, code)
	if err != nil {
		return fmt.Errorf("delete tracked course: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}

	s.afterMutation(ctx, userID, "remove")
	return nil
}

func (s *trackerService) ResetLevel(ctx context.Context, userID uint, level string) (int64, error) {
	parsed, ok := grade.ParseLevel(level)
	if !ok {
		return 0, ErrInvalidLevel
	}

	affected, err := s.repo.DeleteByLevel(ctx, userID, string(parsed))
	if err != nil {
		return 0, fmt.Errorf("reset level: %w", err)
	}

	s.afterMutation(ctx, userID, "reset")
	return affected, nil
}

func (s *trackerService) Summary(ctx context.Context, userID uint) (dto.TrackerSummaryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "tracker.summary", trace.WithAttributes(attribute.Int("user.id", int(userID))))
	defer span.End()

	level, err := s.ProgramLevel(ctx, userID)
	if err != nil {
		return dto.TrackerSummaryResponse{}, err
	}

	// Read the generation before the rows: a mutation in between bumps it, so a
	// summary built from older rows is stored under a key that is never read.
	generation, cacheable := s.summaryGeneration(ctx, userID)
	if cacheable {
		var summary grade.Summary
		if s.summaries.load(ctx, summaryKey(userID, generation), &summary) {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return dto.TrackerSummaryResponse{ProgramLevel: level, Summary: summary, CacheHit: true}, nil
		}
	}

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return dto.TrackerSummaryResponse{}, fmt.Errorf("list tracked courses: %w", err)
	}

	entries := make([]grade.CourseEntry, 0, len(records))
	for _, record := range records {
		if entry, ok := entryFromRecord(record); ok {
			entries = append(entries, entry)
		}
	}

	summary := grade.Summarize(entries)
	if cacheable {
		s.summaries.store(ctx, summaryKey(userID, generation), summary)
	}

	return dto.TrackerSummaryResponse{ProgramLevel: level, Summary: summary}, nil
}

func (s *trackerService) SetProgramLevel(ctx context.Context, userID uint, level string) (grade.Level, error) {
	parsed, ok := grade.ParseLevel(level)
	if !ok {
		return "", ErrInvalidLevel
	}
	if s.cache == nil {
		return parsed, nil
	}
	if err := s.cache.Set(ctx, levelKey(userID), string(parsed), 0).Err(); err != nil {
		return "", fmt.Errorf("store programme level: %w", err)
	}
	return parsed, nil
}

func (s *trackerService) ProgramLevel(ctx context.Context, userID uint) (grade.Level, error) {
	if s.cache == nil {
		return grade.LevelFoundation, nil
	}

	raw, err := s.cache.Get(ctx, levelKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return grade.LevelFoundation, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to read programme level")
		return grade.LevelFoundation, nil
	}

	if parsed, ok := grade.ParseLevel(raw); ok {
		return parsed, nil
	}
	return grade.LevelFoundation, nil
}

func (s *trackerService) afterMutation(ctx context.Context, userID uint, operation string) {
	observability.TrackerMutations().WithLabelValues(operation).Inc()
	if s.cache == nil {
		return
	}
	generation, err := s.cache.Incr(ctx, generationKey(userID)).Result()
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate tracker summary")
		return
	}
	if err := s.cache.Del(ctx, summaryKey(userID, generation-1)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to drop stale tracker summary")
	}
}

// summaryGeneration reports the current cache generation for the user. The
// second result is false when there is no cache or it cannot be read.
func (s *trackerService) summaryGeneration(ctx context.Context, userID uint) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to read tracker summary generation")
		return 0, false
	}
	return generation, true
}

func summaryKey(userID uint, generation int64) string {
	return fmt.Sprintf("tracker:summary:v1:%d:%d", userID, generation)
}

func generationKey(userID uint) string {
	return fmt.Sprintf("tracker:summary:gen:v1:%d", userID)
}

func levelKey(userID uint) string {
	return fmt.Sprintf("tracker:level:v1:%d", userID)
}

func entryFromRecord(record models.CourseRecord) (grade.CourseEntry, bool) {
	course, ok := grade.LookupCourse(record.CourseCode)
	if !ok {
		return grade.CourseEntry{}, false
	}
	return grade.NewCourseEntry(course, grade.ParseGrade(record.Grade), record.IncludeInCGPA), true
}

func toTrackerEntryResponse(entry grade.CourseEntry, updatedAt time.Time) dto.TrackerEntryResponse {
	return dto.TrackerEntryResponse{
		CourseCode:    entry.Course.Code,
		Name:          entry.Course.Name,
		Credits:       entry.Course.Credits,
		Level:         entry.Course.Level,
		Grade:         entry.Grade,
		IncludeInCGPA: entry.IncludeInCGPA,
		Counted:       entry.Counts(),
		UpdatedAt:     updatedAt,
	}
}
