package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/dto"
	"github.com/noah-isme/scholar-hub-api/pkg/grade"
)

func TestGradeServiceCatalog(t *testing.T) {
	svc := NewGradeService(zerolog.Nop())

	levels := svc.Levels()
	require.Len(t, levels, 4)
	require.Equal(t, grade.LevelFoundation, levels[0].Level)
	require.Equal(t, 8, levels[0].CourseCount)

	points := svc.GradePoints()
	require.Len(t, points, 7)
	require.Equal(t, 10, points[0].Points)
	require.False(t, points[len(points)-1].Passing)

	courses, err := svc.Courses("DIPLOMA")
	require.NoError(t, err)
	require.NotEmpty(t, courses)
	for _, course := range courses {
		require.Equal(t, grade.LevelDiploma, course.Level)
	}

	all, err := svc.Courses("")
	require.NoError(t, err)
	require.Greater(t, len(all), len(courses))

	_, err = svc.Courses("masters")
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestGradeServiceCalculate(t *testing.T) {
	svc := NewGradeService(zerolog.Nop())
	req := dto.CGPACalculateRequest{Entries: []dto.CGPAEntryRequest{
		{CourseCode: "BSMA1001", Grade: "A", IncludeInCGPA: true},
		{CourseCode: "BSSE2001", Grade: "S", IncludeInCGPA: true},
		{CourseCode: "BSMA1002", Grade: "U", IncludeInCGPA: true},
		{CourseCode: "nope1", Grade: "S", IncludeInCGPA: true},
	}}

	overall, err := svc.Calculate(req, "")
	require.NoError(t, err)
	require.Equal(t, 9.43, overall.Result.CGPA)
	require.Equal(t, 2, overall.Result.CoursesCount)
	require.Equal(t, []string{"NOPE1"}, overall.UnknownCourses)
	require.Empty(t, overall.Level)

	foundation, err := svc.Calculate(req, "foundation")
	require.NoError(t, err)
	require.Equal(t, "foundation", foundation.Level)
	require.Equal(t, 9.0, foundation.Result.CGPA)
	require.Equal(t, 90.0, foundation.Result.Percentage)
	require.Equal(t, 4, foundation.Result.TotalCredits)

	_, err = svc.Calculate(req, "phd")
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestGradeServicePredict(t *testing.T) {
	svc := NewGradeService(zerolog.Nop())

	prediction, err := svc.Predict(dto.PredictRequest{SubjectCode: "bsma1001", Quiz1: 80, Quiz2: 70, TargetGrade: "a"})
	require.NoError(t, err)
	require.Equal(t, grade.FamilyStandard, prediction.Family)
	require.True(t, prediction.Eligible)
	require.Len(t, prediction.Results, 6)
	require.NotNil(t, prediction.Target)
	require.Equal(t, 87, prediction.Target.Required)

	_, err = svc.Predict(dto.PredictRequest{SubjectCode: "BSSE2001"})
	require.ErrorIs(t, err, ErrSubjectNotSupported)

	_, err = svc.Predict(dto.PredictRequest{SubjectCode: "ZZ9999"})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGradeServiceSubjects(t *testing.T) {
	svc := NewGradeService(zerolog.Nop())

	subjects := svc.Subjects()
	require.Len(t, subjects, 8)

	programming, err := svc.Subject("BSCS1002")
	require.NoError(t, err)
	require.Equal(t, grade.FamilyProgramming, programming.Family)
	require.Equal(t, []string{grade.FieldQuiz1, grade.FieldPE1, grade.FieldPE2}, programming.RequiredFields)
	require.Len(t, programming.Thresholds, 6)

	_, err = svc.Subject("BSCS4001")
	require.Error(t, err)
}
