package models

import "time"

// CourseRecord persists one tracked course of a student's grade tracker.
type CourseRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_course_records_user_course" json:"user_id"`
	CourseCode    string    `gorm:"size:16;not null;uniqueIndex:idx_course_records_user_course" json:"course_code"`
	Level         string    `gorm:"size:16;index;not null" json:"level"`
	Grade         string    `gorm:"size:1" json:"grade"`
	IncludeInCGPA bool      `gorm:"not null;default:false" json:"include_in_cgpa"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
