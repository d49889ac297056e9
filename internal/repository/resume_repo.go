package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/scholar-hub-api/internal/models"
)

// ResumeRepository persists resume builder documents.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	GetByPublicID(ctx context.Context, userID uint, publicID string) (models.Resume, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Resume, error)
	Save(ctx context.Context, resume *models.Resume) error
	Delete(ctx context.Context, userID uint, publicID string) (int64, error)
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository constructs a resume repository backed by GORM.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) GetByPublicID(ctx context.Context, userID uint, publicID string) (models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Resume{}, ErrRecordNotFound
	}
	if err != nil {
		return models.Resume{}, err
	}
	return resume, nil
}

func (r *resumeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&resumes).Error; err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepository) Save(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Save(resume).Error
}

func (r *resumeRepository) Delete(ctx context.Context, userID uint, publicID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Delete(&models.Resume{})
	return result.RowsAffected, result.Error
}
