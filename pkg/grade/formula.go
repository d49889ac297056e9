package grade

// Weight is a named component of a course total, in percent.
type Weight struct {
	Component string  `json:"component"`
	Percent   float64 `json:"percent"`
	Branch    int     `json:"branch,omitempty"`
}

// Input field names callers collect for each family.
const (
	FieldQuiz1 = "quiz1"
	FieldQuiz2 = "quiz2"
	FieldPE1   = "pe1"
	FieldPE2   = "pe2"
)

const (
	standardFormula    = "T = max(0.6F + 0.3·max(Qz1, Qz2), 0.45F + 0.25·Qz1 + 0.3·Qz2)"
	programmingFormula = "T = 0.15·Qz1 + 0.4F + 0.25·max(PE1, PE2) + 0.2·min(PE1, PE2)"
)

// Formula returns the display formula of the subject's total score.
func Formula(subjectCode string) string {
	if FamilyFor(subjectCode) == FamilyProgramming {
		return programmingFormula
	}
	return standardFormula
}

// RequiredFields lists the inputs needed to predict the subject.
func RequiredFields(subjectCode string) []string {
	if FamilyFor(subjectCode) == FamilyProgramming {
		return []string{FieldQuiz1, FieldPE1, FieldPE2}
	}
	return []string{FieldQuiz1, FieldQuiz2}
}

// Weights returns the display weights of the subject's formula. Standard
// subjects carry two branches; the better of the two counts.
func Weights(subjectCode string) []Weight {
	if FamilyFor(subjectCode) == FamilyProgramming {
		return []Weight{
			{Component: "Quiz 1", Percent: 15},
			{Component: "End Term", Percent: 40},
			{Component: "Best Programming Exam", Percent: 25},
			{Component: "Other Programming Exam", Percent: 20},
		}
	}
	return []Weight{
		{Component: "End Term", Percent: 60, Branch: 1},
		{Component: "Best Quiz", Percent: 30, Branch: 1},
		{Component: "End Term", Percent: 45, Branch: 2},
		{Component: "Quiz 1", Percent: 25, Branch: 2},
		{Component: "Quiz 2", Percent: 30, Branch: 2},
	}
}
