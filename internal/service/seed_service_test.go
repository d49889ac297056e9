package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/models"
	"github.com/noah-isme/scholar-hub-api/internal/repository"
)

type seedRoadmapRepo struct {
	repository.RoadmapStageRepository
	items []models.RoadmapStage
}

func (s *seedRoadmapRepo) UpsertBatch(ctx context.Context, items []models.RoadmapStage) (int64, error) {
	s.items = items
	return int64(len(items)), nil
}

func TestSeedServiceTokenGuard(t *testing.T) {
	repo := &seedRoadmapRepo{}
	svc := NewSeedService(repo, nil, true, "secret", zerolog.Nop())

	_, err := svc.SeedRoadmaps(context.Background(), "wrong", []models.RoadmapStage{{Title: "Test", Track: "web"}})
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	affected, err := svc.SeedRoadmaps(context.Background(), " secret ", []models.RoadmapStage{{Title: "Intro to SQL", Track: "Data Science"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.Equal(t, "data-science-intro-to-sql", repo.items[0].Slug)
}

func TestSeedServiceDisabledAndInvalid(t *testing.T) {
	disabled := NewSeedService(&seedRoadmapRepo{}, nil, false, "secret", zerolog.Nop())
	_, err := disabled.SeedRoadmaps(context.Background(), "secret", nil)
	require.ErrorIs(t, err, ErrSeedDisabled)

	noToken := NewSeedService(&seedRoadmapRepo{}, nil, true, "", zerolog.Nop())
	_, err = noToken.SeedRoadmaps(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	svc := NewSeedService(&seedRoadmapRepo{}, nil, true, "secret", zerolog.Nop())
	_, err = svc.SeedRoadmaps(context.Background(), "secret", []models.RoadmapStage{{Title: "No track"}})
	require.ErrorIs(t, err, ErrSeedInvalid)
}

func TestSeedServiceFlushesRoadmapCache(t *testing.T) {
	db := newTestDB(t, &models.RoadmapStage{})
	mr, client := newTestRedis(t)
	repo := repository.NewRoadmapStageRepository(db)

	roadmaps := NewRoadmapService(repo, client, 0, zerolog.Nop())
	_, err := roadmaps.ListStages(context.Background(), dto.RoadmapStageListRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	seeder := NewSeedService(repo, client, true, "secret", zerolog.Nop())
	affected, err := seeder.SeedRoadmaps(context.Background(), "secret", []models.RoadmapStage{
		{Title: "Linear Algebra", Track: "maths", Sequence: 1, Tags: []string{"Core", "core"}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.Empty(t, mr.Keys())

	result, err := roadmaps.ListStages(context.Background(), dto.RoadmapStageListRequest{Track: "maths"})
	require.NoError(t, err)
	require.False(t, result.CacheHit)
	require.Len(t, result.Items, 1)
	require.Equal(t, []string{"core"}, result.Items[0].Tags)
}
