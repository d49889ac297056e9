package dto

import (
	"time"

	"github.com/noah-isme/scholar-hub-api/pkg/grade"
)

// TrackerAddRequest adds a catalog course to the grade tracker.
type TrackerAddRequest struct {
	CourseCode    string `json:"course_code" validate:"required,max=16"`
	Grade         string `json:"grade" validate:"omitempty,oneof=S A B C D E U s a b c d e u"`
	IncludeInCGPA *bool  `json:"include_in_cgpa"`
}

// TrackerUpdateRequest patches the grade and/or inclusion of a tracked course.
type TrackerUpdateRequest struct {
	Grade         *string `json:"grade" validate:"omitempty,oneof=S A B C D E U s a b c d e u"`
	IncludeInCGPA *bool   `json:"include_in_cgpa"`
}

// TrackerLevelRequest selects the student's current programme level.
type TrackerLevelRequest struct {
	Level string `json:"level" validate:"required,oneof=foundation diploma bsc bs"`
}

// TrackerEntryResponse is a tracked course as returned to clients.
type TrackerEntryResponse struct {
	CourseCode    string      `json:"course_code"`
	Name          string      `json:"name"`
	Credits       int         `json:"credits"`
	Level         grade.Level `json:"level"`
	Grade         grade.Grade `json:"grade"`
	IncludeInCGPA bool        `json:"include_in_cgpa"`
	Counted       bool        `json:"counted"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TrackerSummaryResponse bundles the aggregates for the dashboard.
type TrackerSummaryResponse struct {
	ProgramLevel grade.Level   `json:"program_level"`
	Summary      grade.Summary `json:"summary"`
	CacheHit     bool          `json:"cache_hit"`
}
