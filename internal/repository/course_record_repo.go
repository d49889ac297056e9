package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholar-hub-api/internal/models"
)

var (
	// ErrRecordNotFound is returned when a lookup matches no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists is returned when an insert hits an existing unique key.
	ErrRecordExists = errors.New("record already exists")
)

// CourseRecordRepository persists grade tracker entries.
type CourseRecordRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.CourseRecord, error)
	Get(ctx context.Context, userID uint, courseCode string) (models.CourseRecord, error)
	Create(ctx context.Context, record *models.CourseRecord) error
	Save(ctx context.Context, record *models.CourseRecord) error
	Delete(ctx context.Context, userID uint, courseCode string) (int64, error)
	DeleteByLevel(ctx context.Context, userID uint, level string) (int64, error)
}

type courseRecordRepository struct {
	db *gorm.DB
}

// NewCourseRecordRepository constructs a repository backed by GORM.
func NewCourseRecordRepository(db *gorm.DB) CourseRecordRepository {
	return &courseRecordRepository{db: db}
}

func (r *courseRecordRepository) ListByUser(ctx context.Context, userID uint) ([]models.CourseRecord, error) {
	var records []models.CourseRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *courseRecordRepository) Get(ctx context.Context, userID uint, courseCode string) (models.CourseRecord, error) {
	var record models.CourseRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_code = ?", userID, courseCode).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CourseRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return models.CourseRecord{}, err
	}
	return record, nil
}

// Create inserts the record, returning ErrRecordExists when the user already tracks the course.
func (r *courseRecordRepository) Create(ctx context.Context, record *models.CourseRecord) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_code"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordExists
	}
	return nil
}

func (r *courseRecordRepository) Save(ctx context.Context, record *models.CourseRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *courseRecordRepository) Delete(ctx context.Context, userID uint, courseCode string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_code = ?", userID, courseCode).
		Delete(&models.CourseRecord{})
	return result.RowsAffected, result.Error
}

func (r *courseRecordRepository) DeleteByLevel(ctx context.Context, userID uint, level string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND level = ?", userID, level).
		Delete(&models.CourseRecord{})
	return result.RowsAffected, result.Error
}
