package grade

// CourseEntry associates a catalog course with the grade a student received.
//
// Use SetGrade and SetInclude to mutate an entry; they keep a U grade from
// ever being counted.
type CourseEntry struct {
	Course        Course `json:"course"`
	Grade         Grade  `json:"grade"`
	IncludeInCGPA bool   `json:"include_in_cgpa"`
}

// NewCourseEntry builds an entry and applies the U rule to include.
func NewCourseEntry(course Course, g Grade, include bool) CourseEntry {
	entry := CourseEntry{Course: course}
	entry.SetGrade(g)
	entry.SetInclude(include)
	return entry
}

// SetGrade updates the grade. Moving to U removes the entry from the CGPA.
func (e *CourseEntry) SetGrade(g Grade) {
	e.Grade = g
	if g == U {
		e.IncludeInCGPA = false
	}
}

// SetInclude toggles CGPA inclusion. A U graded entry always stays excluded.
func (e *CourseEntry) SetInclude(include bool) {
	if e.Grade == U {
		e.IncludeInCGPA = false
		return
	}
	e.IncludeInCGPA = include
}

// Counts reports whether the entry participates in a CGPA aggregate.
func (e CourseEntry) Counts() bool {
	return e.IncludeInCGPA && e.Grade != None && e.Grade != U && IsPassingGrade(e.Grade)
}

// CGPAResult is the derived aggregate over a set of entries.
type CGPAResult struct {
	CGPA         float64 `json:"cgpa"`
	Percentage   float64 `json:"percentage"`
	TotalCredits int     `json:"total_credits"`
	CoursesCount int     `json:"courses_count"`
}

// CalculateCGPA returns the credit weighted grade point average of every
// counting entry. An empty aggregate yields the zero result.
func CalculateCGPA(entries []CourseEntry) CGPAResult {
	var (
		weighted int
		credits  int
		courses  int
	)
	for _, entry := range entries {
		if !entry.Counts() {
			continue
		}
		weighted += entry.Course.Credits * Points(entry.Grade)
		credits += entry.Course.Credits
		courses++
	}

	if credits == 0 {
		return CGPAResult{}
	}

	return CGPAResult{
		CGPA:         roundRatio(weighted, credits),
		Percentage:   roundRatio(weighted*10, credits),
		TotalCredits: credits,
		CoursesCount: courses,
	}
}

// CalculateLevelCGPA is CalculateCGPA restricted to courses of one level.
func CalculateLevelCGPA(entries []CourseEntry, level Level) CGPAResult {
	scoped := make([]CourseEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Course.Level == level {
			scoped = append(scoped, entry)
		}
	}
	return CalculateCGPA(scoped)
}

// LevelResult pairs a level with its scoped aggregate.
type LevelResult struct {
	Level  Level      `json:"level"`
	Label  string     `json:"label"`
	Result CGPAResult `json:"result"`
}

// Summary is the overall aggregate plus one aggregate per programme level.
type Summary struct {
	Overall CGPAResult    `json:"overall"`
	Levels  []LevelResult `json:"levels"`
}

// Summarize computes the overall and per-level aggregates in one pass over levels.
func Summarize(entries []CourseEntry) Summary {
	summary := Summary{
		Overall: CalculateCGPA(entries),
		Levels:  make([]LevelResult, 0, len(levels)),
	}
	for _, level := range levels {
		summary.Levels = append(summary.Levels, LevelResult{
			Level:  level,
			Label:  level.Label(),
			Result: CalculateLevelCGPA(entries, level),
		})
	}
	return summary
}

// roundRatio rounds num/den half-up at the second decimal using integer arithmetic.
func roundRatio(num, den int) float64 {
	return float64((num*200+den)/(2*den)) / 100
}
