package grade

import (
	"math"
	"strings"
)

// Family selects the total-score formula a subject is graded with.
type Family int

// Formula families. Standard covers every foundation subject except Python.
const (
	FamilyStandard Family = iota
	FamilyProgramming
)

// String returns the wire name of the family.
func (f Family) String() string {
	switch f {
	case FamilyProgramming:
		return "programming"
	default:
		return "standard"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode as standard.
func (f *Family) UnmarshalText(text []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(text)), FamilyProgramming.String()) {
		*f = FamilyProgramming
		return nil
	}
	*f = FamilyStandard
	return nil
}

// FamilyFor maps a subject code to its formula family.
func FamilyFor(subjectCode string) Family {
	if strings.EqualFold(strings.TrimSpace(subjectCode), ProgrammingSubjectCode) {
		return FamilyProgramming
	}
	return FamilyStandard
}

// PredictorInput carries the component scores a student already has.
// Scores are out of 100; zero means the component was not attempted.
type PredictorInput struct {
	SubjectCode string  `json:"subject_code"`
	Quiz1       float64 `json:"quiz1"`
	Quiz2       float64 `json:"quiz2"`
	PE1         float64 `json:"pe1"`
	PE2         float64 `json:"pe2"`
	TargetGrade Grade   `json:"target_grade,omitempty"`
}

// PredictionResult is the end-term requirement for one grade.
type PredictionResult struct {
	Grade      Grade `json:"grade"`
	Required   int   `json:"required"`
	Achievable bool  `json:"achievable"`
}

// Prediction bundles the per-grade results with the context they were solved in.
type Prediction struct {
	SubjectCode string             `json:"subject_code"`
	Family      Family             `json:"family"`
	Eligible    bool               `json:"eligible"`
	Results     []PredictionResult `json:"results"`
	Target      *PredictionResult  `json:"target,omitempty"`
}

const programmingPassMark = 40

// Eligible reports whether a final exam requirement is meaningful for in.
// Standard subjects need at least one quiz attempted; the programming subject
// needs quiz 1 plus a programming exam at or above 40.
func Eligible(in PredictorInput) bool {
	switch FamilyFor(in.SubjectCode) {
	case FamilyProgramming:
		return in.Quiz1 > 0 && (in.PE1 >= programmingPassMark || in.PE2 >= programmingPassMark)
	default:
		return in.Quiz1 > 0 || in.Quiz2 > 0
	}
}

// RequiredFinal solves for the unclamped final exam score that reaches target.
func RequiredFinal(in PredictorInput, target float64) float64 {
	switch FamilyFor(in.SubjectCode) {
	case FamilyProgramming:
		best := math.Max(in.PE1, in.PE2)
		worst := math.Min(in.PE1, in.PE2)
		return (target - 0.15*in.Quiz1 - 0.25*best - 0.2*worst) / 0.4
	default:
		// T is the larger of two linear branches, so the easier branch binds.
		branch1 := (target - 0.3*math.Max(in.Quiz1, in.Quiz2)) / 0.6
		branch2 := (target - 0.25*in.Quiz1 - 0.3*in.Quiz2) / 0.45
		return math.Min(branch1, branch2)
	}
}

// CalculatePredictions returns the end-term requirement for each grade from S
// to E. Ineligible inputs report every grade as unachievable with 0 required.
func CalculatePredictions(in PredictorInput) []PredictionResult {
	eligible := Eligible(in)
	results := make([]PredictionResult, 0, len(Thresholds))
	for _, threshold := range Thresholds {
		if !eligible {
			results = append(results, PredictionResult{Grade: threshold.Grade})
			continue
		}
		required := RequiredFinal(in, float64(threshold.Min))
		results = append(results, PredictionResult{
			Grade:      threshold.Grade,
			Required:   int(math.Round(clamp(required, 0, 100))),
			Achievable: required <= 100,
		})
	}
	return results
}

// Predict runs CalculatePredictions and picks out the target grade, if any.
func Predict(in PredictorInput) Prediction {
	prediction := Prediction{
		SubjectCode: strings.ToUpper(strings.TrimSpace(in.SubjectCode)),
		Family:      FamilyFor(in.SubjectCode),
		Eligible:    Eligible(in),
		Results:     CalculatePredictions(in),
	}
	for i := range prediction.Results {
		if in.TargetGrade != None && prediction.Results[i].Grade == in.TargetGrade {
			target := prediction.Results[i]
			prediction.Target = &target
			break
		}
	}
	return prediction
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
