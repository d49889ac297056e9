package dto

import "github.com/noah-isme/scholar-hub-api/pkg/grade"

// CGPAEntryRequest is a client supplied course entry for stateless calculation.
type CGPAEntryRequest struct {
	CourseCode    string `json:"course_code" validate:"required,max=16"`
	Grade         string `json:"grade" validate:"omitempty,oneof=S A B C D E U s a b c d e u"`
	IncludeInCGPA bool   `json:"include_in_cgpa"`
}

// CGPACalculateRequest wraps the entries to aggregate.
type CGPACalculateRequest struct {
	Entries []CGPAEntryRequest `json:"entries" validate:"max=200,dive"`
}

// CGPACalculateResponse reports the aggregate and any ignored course codes.
type CGPACalculateResponse struct {
	Level          string           `json:"level,omitempty"`
	Result         grade.CGPAResult `json:"result"`
	UnknownCourses []string         `json:"unknown_courses"`
}

// LevelResponse describes a programme level for dropdowns.
type LevelResponse struct {
	Level       grade.Level `json:"level"`
	Label       string      `json:"label"`
	CourseCount int         `json:"course_count"`
}

// GradePointResponse is one row of the grade point table.
type GradePointResponse struct {
	Grade   grade.Grade `json:"grade"`
	Points  int         `json:"points"`
	Passing bool        `json:"passing"`
}

// PredictRequest is the payload for the end-term predictor.
type PredictRequest struct {
	SubjectCode string  `json:"subject_code" validate:"required,max=16"`
	Quiz1       float64 `json:"quiz1" validate:"gte=0,lte=100"`
	Quiz2       float64 `json:"quiz2" validate:"gte=0,lte=100"`
	PE1         float64 `json:"pe1" validate:"gte=0,lte=100"`
	PE2         float64 `json:"pe2" validate:"gte=0,lte=100"`
	TargetGrade string  `json:"target_grade" validate:"omitempty,oneof=S A B C D E s a b c d e"`
}

// SubjectFormulaResponse describes how a subject's total is computed.
type SubjectFormulaResponse struct {
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Family         grade.Family      `json:"family"`
	Formula        string            `json:"formula"`
	RequiredFields []string          `json:"required_fields"`
	Weights        []grade.Weight    `json:"weights"`
	Thresholds     []grade.Threshold `json:"thresholds"`
}
