// Package grade holds the pure grade computations used across the hub: the
// credit-weighted CGPA aggregator and the end-term marks predictor.
//
// Every function in this package is a total, side-effect free function of its
// arguments and is safe for concurrent use.
package grade

import "strings"

// Grade is a letter grade awarded for a course. The zero value means the
// course has not been graded yet.
type Grade string

// Letter grades awarded by the programme.
const (
	None Grade = ""
	S    Grade = "S"
	A    Grade = "A"
	B    Grade = "B"
	C    Grade = "C"
	D    Grade = "D"
	E    Grade = "E"
	U    Grade = "U"
)

var gradePoints = map[Grade]int{
	S: 10,
	A: 9,
	B: 8,
	C: 7,
	D: 6,
	E: 4,
	U: 0,
}

// AllGrades lists every awardable grade from highest to lowest.
var AllGrades = []Grade{S, A, B, C, D, E, U}

// passingGrades are the grades that count towards a CGPA.
var passingGrades = []Grade{S, A, B, C, D, E}

// ParseGrade normalises user input into a Grade. Unknown values map to None.
func ParseGrade(raw string) Grade {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := gradePoints[g]; ok {
		return g
	}
	return None
}

// Points returns the grade point value for g. Ungraded and unknown grades are 0.
func Points(g Grade) int {
	return gradePoints[g]
}

// GradePoints returns a copy of the grade point table keyed by letter.
func GradePoints() map[Grade]int {
	table := make(map[Grade]int, len(gradePoints))
	for g, p := range gradePoints {
		table[g] = p
	}
	return table
}

// IsPassingGrade reports whether g is one of S, A, B, C, D or E.
func IsPassingGrade(g Grade) bool {
	for _, p := range passingGrades {
		if g == p {
			return true
		}
	}
	return false
}

// Valid reports whether g is an awardable grade (passing or U).
func (g Grade) Valid() bool {
	_, ok := gradePoints[g]
	return ok
}

// Threshold describes the minimum total course score needed for a grade.
type Threshold struct {
	Grade  Grade `json:"grade"`
	Min    int   `json:"min"`
	Points int   `json:"points"`
}

// Thresholds is the fixed grade boundary table, highest grade first.
var Thresholds = []Threshold{
	{Grade: S, Min: 90, Points: gradePoints[S]},
	{Grade: A, Min: 80, Points: gradePoints[A]},
	{Grade: B, Min: 70, Points: gradePoints[B]},
	{Grade: C, Min: 60, Points: gradePoints[C]},
	{Grade: D, Min: 50, Points: gradePoints[D]},
	{Grade: E, Min: 40, Points: gradePoints[E]},
}

// ThresholdFor returns the boundary for g and false when g has no boundary.
func ThresholdFor(g Grade) (Threshold, bool) {
	for _, t := range Thresholds {
		if t.Grade == g {
			return t, true
		}
	}
	return Threshold{}, false
}
