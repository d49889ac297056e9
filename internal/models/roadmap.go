package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoadmapStage represents a learning stage of a roadmap track.
type RoadmapStage struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Slug           string            `gorm:"size:160;uniqueIndex" json:"slug"`
	Track          string            `gorm:"size:64;index;not null" json:"track"`
	Title          string            `gorm:"size:255;not null" json:"title"`
	Description    string            `gorm:"type:text" json:"description"`
	Sequence       int               `gorm:"index" json:"sequence"`
	EstimatedHours int               `gorm:"default:2" json:"estimated_hours"`
	Icon           string            `gorm:"size:64" json:"icon"`
	TagsRaw        string            `gorm:"column:tags;type:text" json:"-"`
	Skills         datatypes.JSONMap `gorm:"type:json" json:"skills"`
	Resources      datatypes.JSON    `gorm:"type:json" json:"resources"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Tags           []string          `gorm:"-" json:"tags"`
}

// BeforeSave normalises roadmap stage tags.
func (r *RoadmapStage) BeforeSave(tx *gorm.DB) error {
	r.TagsRaw = encodeTags(r.Tags)
	r.Track = strings.ToLower(strings.TrimSpace(r.Track))
	if r.Sequence < 0 {
		r.Sequence = 0
	}
	if r.EstimatedHours <= 0 {
		r.EstimatedHours = 2
	}
	return nil
}

// AfterFind hydrates tags after loading from DB.
func (r *RoadmapStage) AfterFind(tx *gorm.DB) error {
	r.Tags = decodeTags(r.TagsRaw)
	return nil
}

func encodeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}
