package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/internal/observability"
	"github.com/noah-isme/scholar-hub-api/pkg/grade"
)

// ErrSubjectNotSupported indicates the predictor has no formula for the subject.
var ErrSubjectNotSupported = errors.New("predictor only supports foundation subjects")

// GradeService exposes the catalog, the stateless CGPA calculator and the end-term predictor.
type GradeService interface {
	Levels() []dto.LevelResponse
	GradePoints() []dto.GradePointResponse
	Courses(level string) ([]grade.Course, error)
	Calculate(req dto.CGPACalculateRequest, level string) (dto.CGPACalculateResponse, error)
	Predict(req dto.PredictRequest) (grade.Prediction, error)
	Subjects() []dto.SubjectFormulaResponse
	Subject(code string) (dto.SubjectFormulaResponse, error)
}

type gradeService struct {
	logger zerolog.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(logger zerolog.Logger) GradeService {
	return &gradeService{
		logger: logger.With().Str("component", "grade_service").Logger(),
	}
}

func (s *gradeService) Levels() []dto.LevelResponse {
	levels := grade.Levels()
	items := make([]dto.LevelResponse, 0, len(levels))
	for _, level := range levels {
		items = append(items, dto.LevelResponse{
			Level:       level,
			Label:       level.Label(),
			CourseCount: len(grade.Catalog(level)),
		})
	}
	return items
}

func (s *gradeService) GradePoints() []dto.GradePointResponse {
	items := make([]dto.GradePointResponse, 0, len(grade.AllGrades))
	for _, g := range grade.AllGrades {
		items = append(items, dto.GradePointResponse{
			Grade:   g,
			Points:  grade.Points(g),
			Passing: grade.IsPassingGrade(g),
		})
	}
	return items
}

func (s *gradeService) Courses(level string) ([]grade.Course, error) {
	if strings.TrimSpace(level) == "" {
		var all []grade.Course
		for _, l := range grade.Levels() {
			all = append(all, grade.Catalog(l)...)
		}
		return all, nil
	}

	parsed, ok := grade.ParseLevel(level)
	if !ok {
		return nil, ErrInvalidLevel
	}
	return grade.Catalog(parsed), nil
}

func (s *gradeService) Calculate(req dto.CGPACalculateRequest, level string) (dto.CGPACalculateResponse, error) {
	var scope grade.Level
	if strings.TrimSpace(level) != "" {
		parsed, ok := grade.ParseLevel(level)
		if !ok {
			return dto.CGPACalculateResponse{}, ErrInvalidLevel
		}
		scope = parsed
	}

	entries := make([]grade.CourseEntry, 0, len(req.Entries))
	unknown := make([]string, 0)
	for _, item := range req.Entries {
		course, ok := grade.LookupCourse(item.CourseCode)
		if !ok {
			unknown = append(unknown, strings.ToUpper(strings.TrimSpace(item.CourseCode)))
			continue
		}
		entries = append(entries, grade.NewCourseEntry(course, grade.ParseGrade(item.Grade), item.IncludeInCGPA))
	}

	if len(unknown) > 0 {
		s.logger.Debug().Strs("unknown_courses", unknown).Msg("ignoring unknown courses in calculation")
	}

	response := dto.CGPACalculateResponse{UnknownCourses: unknown}
	if scope != "" {
		response.Level = string(scope)
		response.Result = grade.CalculateLevelCGPA(entries, scope)
	} else {
		response.Result = grade.CalculateCGPA(entries)
	}
	return response, nil
}

func (s *gradeService) Predict(req dto.PredictRequest) (grade.Prediction, error) {
	course, ok := grade.LookupCourse(req.SubjectCode)
	if !ok {
		return grade.Prediction{}, ErrCourseNotFound
	}
	if course.Level != grade.LevelFoundation {
		return grade.Prediction{}, ErrSubjectNotSupported
	}

	prediction := grade.Predict(grade.PredictorInput{
		SubjectCode: course.Code,
		Quiz1:       req.Quiz1,
		Quiz2:       req.Quiz2,
		PE1:         req.PE1,
		PE2:         req.PE2,
		TargetGrade: grade.ParseGrade(req.TargetGrade),
	})

	observability.PredictorRequests().WithLabelValues(prediction.Family.String(), strconv.FormatBool(prediction.Eligible)).Inc()
	return prediction, nil
}

func (s *gradeService) Subjects() []dto.SubjectFormulaResponse {
	courses := grade.Catalog(grade.LevelFoundation)
	items := make([]dto.SubjectFormulaResponse, 0, len(courses))
	for _, course := range courses {
		items = append(items, toSubjectFormulaResponse(course))
	}
	return items
}

func (s *gradeService) Subject(code string) (dto.SubjectFormulaResponse, error) {
	course, ok := grade.LookupCourse(code)
	if !ok {
		return dto.SubjectFormulaResponse{}, ErrCourseNotFound
	}
	if course.Level != grade.LevelFoundation {
		return dto.SubjectFormulaResponse{}, ErrSubjectNotSupported
	}
	return toSubjectFormulaResponse(course), nil
}

func toSubjectFormulaResponse(course grade.Course) dto.SubjectFormulaResponse {
	return dto.SubjectFormulaResponse{
		Code:           course.Code,
		Name:           course.Name,
		Family:         grade.FamilyFor(course.Code),
		Formula:        grade.Formula(course.Code),
		RequiredFields: grade.RequiredFields(course.Code),
		Weights:        grade.Weights(course.Code),
		Thresholds:     append([]grade.Threshold(nil), grade.Thresholds...),
	}
}
