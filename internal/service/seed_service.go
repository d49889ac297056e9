package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
	// ErrSeedInvalid indicates a seeded item is missing required fields.
	ErrSeedInvalid = errors.New("invalid seed payload")
)

// SeedService orchestrates content seeding operations.
type SeedService interface {
	SeedRoadmaps(ctx context.Context, token string, stages []models.RoadmapStage) (int64, error)
}

type seedService struct {
	roadmapRepo repository.RoadmapStageRepository
	cache       *redis.Client
	enabled     bool
	token       string
	logger      zerolog.Logger
}

// NewSeedService constructs a seeding service. The cache, when present, has its
// roadmap entries flushed after every successful seed.
func NewSeedService(roadmapRepo repository.RoadmapStageRepository, cache *redis.Client, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		roadmapRepo: roadmapRepo,
		cache:       cache,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedRoadmaps(ctx context.Context, token string, stages []models.RoadmapStage) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	normalized, err := normalizeRoadmapStages(stages)
	if err != nil {
		return 0, err
	}

	affected, err := s.roadmapRepo.UpsertBatch(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("upsert roadmap stages: %w", err)
	}

	s.flushRoadmapCache(ctx)
	s.logger.Info().Int64("affected", affected).Msg("roadmap stages seeded")
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func (s *seedService) flushRoadmapCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, roadmapCachePrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to drop roadmap cache entry")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan roadmap cache")
	}
}

func normalizeRoadmapStages(stages []models.RoadmapStage) ([]models.RoadmapStage, error) {
	for i := range stages {
		stages[i].Title = strings.TrimSpace(stages[i].Title)
		stages[i].Track = strings.TrimSpace(stages[i].Track)
		if stages[i].Title == "" || stages[i].Track == "" {
			return nil, fmt.Errorf("%w: stage %d needs a title and a track", ErrSeedInvalid, i)
		}
		if stages[i].Slug == "" {
			stages[i].Slug = slugify(stages[i].Track + " " + stages[i].Title)
		}
		stages[i].Tags = normalizeTags(stages[i].Tags)
	}
	return stages, nil
}

func slugify(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
