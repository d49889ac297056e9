package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resume stores a resume builder document owned by a student.
type Resume struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PublicID  string         `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Title     string         `gorm:"size:160;not null" json:"title"`
	Template  string         `gorm:"size:32;not null;default:classic" json:"template"`
	PhotoURL  string         `gorm:"size:512" json:"photo_url"`
	Document  datatypes.JSON `gorm:"type:json" json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
