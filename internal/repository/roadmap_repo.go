package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholar-hub-api/internal/models"
)

// RoadmapStageFilter describes filters applied to roadmap queries.
type RoadmapStageFilter struct {
	Track    string
	Search   string
	Tags     []string
	Sort     string
	Page     int
	PageSize int
}

// RoadmapTrackStat aggregates the stages of one track.
type RoadmapTrackStat struct {
	Track          string
	Stages         int
	EstimatedHours int
}

// RoadmapStageRepository exposes roadmap persistence helpers.
type RoadmapStageRepository interface {
	List(ctx context.Context, filter RoadmapStageFilter) ([]models.RoadmapStage, int64, error)
	Tracks(ctx context.Context) ([]RoadmapTrackStat, error)
	UpsertBatch(ctx context.Context, stages []models.RoadmapStage) (int64, error)
}

type roadmapStageRepository struct {
	db *gorm.DB
}

// NewRoadmapStageRepository constructs a repository.
func NewRoadmapStageRepository(db *gorm.DB) RoadmapStageRepository {
	return &roadmapStageRepository{db: db}
}

func (r *roadmapStageRepository) List(ctx context.Context, filter RoadmapStageFilter) ([]models.RoadmapStage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RoadmapStage{})

	if filter.Track != "" {
		query = query.Where("track = ?", strings.ToLower(strings.TrimSpace(filter.Track)))
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	for _, tag := range filter.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		query = query.Where("tags LIKE ?", "%|"+tag+"|%")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order := roadmapSortClause(filter.Sort); order != "" {
		query = query.Order(order)
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var stages []models.RoadmapStage
	if err := query.Find(&stages).Error; err != nil {
		return nil, 0, err
	}
	return stages, total, nil
}

func (r *roadmapStageRepository) Tracks(ctx context.Context) ([]RoadmapTrackStat, error) {
	var stats []RoadmapTrackStat
	err := r.db.WithContext(ctx).
		Model(&models.RoadmapStage{}).
		Select("track, COUNT(*) AS stages, COALESCE(SUM(estimated_hours), 0) AS estimated_hours").
		Group("track").
		Order("track ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *roadmapStageRepository) UpsertBatch(ctx context.Context, stages []models.RoadmapStage) (int64, error) {
	if len(stages) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"track", "title", "description", "sequence", "estimated_hours", "icon", "tags", "skills", "resources", "updated_at"}),
	})

	result := tx.Create(&stages)
	return result.RowsAffected, result.Error
}

func roadmapSortClause(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "-sequence":
		return "track ASC, sequence DESC"
	case "recent":
		return "updated_at DESC"
	default:
		return "track ASC, sequence ASC"
	}
}
