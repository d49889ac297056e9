package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
)

const (
	roadmapCachePrefix = "roadmap:v1"
	defaultPageSize    = 20
	maxPageSize        = 100
)

// RoadmapService serves the learning roadmaps that follow each programme track.
type RoadmapService interface {
	ListStages(ctx context.Context, req dto.RoadmapStageListRequest) (dto.RoadmapStageListResult, error)
	Tracks(ctx context.Context) ([]dto.RoadmapTrackResponse, error)
}

type roadmapService struct {
	repo  repository.RoadmapStageRepository
	cache jsonCache
}

// NewRoadmapService constructs the roadmap service. Stage pages and the track
// overview are cached for ttl when a Redis client is given; seeding clears them.
func NewRoadmapService(repo repository.RoadmapStageRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) RoadmapService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	logger = logger.With().Str("component", "roadmap_service").Logger()
	return &roadmapService{
		repo:  repo,
		cache: newJSONCache(cache, ttl, logger),
	}
}

func (s *roadmapService) ListStages(ctx context.Context, req dto.RoadmapStageListRequest) (dto.RoadmapStageListResult, error) {
	timer := time.Now()
	defer func() {
		observability.RoadmapLatency().Observe(time.Since(timer).Seconds())
	}()

	filter := stageFilterFrom(req)
	key := stagesCacheKey(filter)

	var cached dto.RoadmapStageListResult
	if s.cache.load(ctx, key, &cached) {
		cached.CacheHit = true
		observability.RoadmapRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	stages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		observability.RoadmapRequests().WithLabelValues("error").Inc()
		return dto.RoadmapStageListResult{}, fmt.Errorf("list roadmap stages: %w", err)
	}

	result := dto.RoadmapStageListResult{
		Items: make([]dto.RoadmapStageResponse, 0, len(stages)),
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: pageCount(total, filter.PageSize),
		},
		Filters: dto.RoadmapStageFilters{
			Track:  filter.Track,
			Search: filter.Search,
			Tags:   filter.Tags,
			Sort:   filter.Sort,
		},
	}
	for _, stage := range stages {
		result.Items = append(result.Items, stageResponse(stage))
	}

	s.cache.store(ctx, key, result)
	observability.RoadmapRequests().WithLabelValues("miss").Inc()
	return result, nil
}

func (s *roadmapService) Tracks(ctx context.Context) ([]dto.RoadmapTrackResponse, error) {
	key := roadmapCachePrefix + ":tracks"

	var tracks []dto.RoadmapTrackResponse
	if s.cache.load(ctx, key, &tracks) {
		return tracks, nil
	}

	stats, err := s.repo.Tracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roadmap tracks: %w", err)
	}
	tracks = make([]dto.RoadmapTrackResponse, 0, len(stats))
	for _, stat := range stats {
		tracks = append(tracks, dto.RoadmapTrackResponse{
			Track:          stat.Track,
			Stages:         stat.Stages,
			EstimatedHours: stat.EstimatedHours,
		})
	}

	s.cache.store(ctx, key, tracks)
	return tracks, nil
}

func stageFilterFrom(req dto.RoadmapStageListRequest) repository.RoadmapStageFilter {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	return repository.RoadmapStageFilter{
		Track:    strings.ToLower(strings.TrimSpace(req.Track)),
		Search:   strings.TrimSpace(req.Search),
		Tags:     normalizeTags(req.Tags),
		Sort:     stageSort(req.Sort),
		Page:     page,
		PageSize: boundedPageSize(req.PageSize),
	}
}

func stagesCacheKey(filter repository.RoadmapStageFilter) string {
	track := filter.Track
	if track == "" {
		track = "all"
	}
	return fmt.Sprintf("%s:stages:%s:%s:%d:%d:%s:%s",
		roadmapCachePrefix, track, filter.Sort, filter.Page, filter.PageSize,
		strings.Join(filter.Tags, ","), strings.ToLower(filter.Search))
}

func stageResponse(stage models.RoadmapStage) dto.RoadmapStageResponse {
	skills := make(map[string]string, len(stage.Skills))
	for skill, level := range stage.Skills {
		skills[skill] = skillLevel(level)
	}
	tags := stage.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.RoadmapStageResponse{
		ID:             stage.ID,
		Slug:           stage.Slug,
		Track:          stage.Track,
		Title:          stage.Title,
		Description:    stage.Description,
		Sequence:       stage.Sequence,
		EstimatedHours: stage.EstimatedHours,
		Icon:           stage.Icon,
		Tags:           tags,
		Skills:         skills,
		Resources:      json.RawMessage(stage.Resources),
		UpdatedAt:      stage.UpdatedAt,
	}
}

// skillLevel renders a decoded JSON skill value. Numeric levels such as 2 or 2.5
// come back from the JSON column as float64.
func skillLevel(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func stageSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "-sequence", "sequence.desc":
		return "-sequence"
	case "recent", "updated_at", "updated_at.desc":
		return "recent"
	default:
		return "sequence"
	}
}

func boundedPageSize(size int) int {
	switch {
	case size <= 0:
		return defaultPageSize
	case size > maxPageSize:
		return maxPageSize
	default:
		return size
	}
}

func pageCount(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// normalizeTags lowercases tags and drops blanks and repeats, keeping first-seen order.
func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || slices.Contains(normalized, tag) {
			continue
		}
		normalized = append(normalized, tag)
	}
	return normalized
}
