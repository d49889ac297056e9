package models

import "time"

// ChatMessage records a turn relayed through the assistant.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;index;not null" json:"session_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	Model     string    `gorm:"size:128" json:"model"`
	Fallback  bool      `gorm:"not null;default:false" json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}
