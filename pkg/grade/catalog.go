package grade

import "strings"

// Level identifies a stage of the degree programme.
type Level string

// Programme levels in the order a student progresses through them.
const (
	LevelFoundation Level = "foundation"
	LevelDiploma    Level = "diploma"
	LevelBSc        Level = "bsc"
	LevelBS         Level = "bs"
)

var levels = []Level{LevelFoundation, LevelDiploma, LevelBSc, LevelBS}

// Levels returns all programme levels in progression order.
func Levels() []Level {
	return append([]Level(nil), levels...)
}

// ParseLevel normalises raw into a Level; ok is false for unknown values.
func ParseLevel(raw string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range levels {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// Label returns a human readable name for the level.
func (l Level) Label() string {
	switch l {
	case LevelFoundation:
		return "Foundation"
	case LevelDiploma:
		return "Diploma"
	case LevelBSc:
		return "BSc Degree"
	case LevelBS:
		return "BS Degree"
	default:
		return string(l)
	}
}

// Course is an immutable catalog entry.
type Course struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Level   Level  `json:"level"`
}

// ProgrammingSubjectCode is the foundation course graded with the programming formula.
const ProgrammingSubjectCode = "BSCS1002"

var catalog = map[Level][]Course{
	LevelFoundation: {
		{Code: "BSMA1001", Name: "Mathematics for Data Science I", Credits: 4, Level: LevelFoundation},
		{Code: "BSMA1002", Name: "Statistics for Data Science I", Credits: 4, Level: LevelFoundation},
		{Code: "BSCS1001", Name: "Computational Thinking", Credits: 4, Level: LevelFoundation},
		{Code: "BSHS1001", Name: "English I", Credits: 4, Level: LevelFoundation},
		{Code: "BSMA1003", Name: "Mathematics for Data Science II", Credits: 4, Level: LevelFoundation},
		{Code: "BSMA1004", Name: "Statistics for Data Science II", Credits: 4, Level: LevelFoundation},
		{Code: ProgrammingSubjectCode, Name: "Programming in Python", Credits: 4, Level: LevelFoundation},
		{Code: "BSHS1002", Name: "English II", Credits: 4, Level: LevelFoundation},
	},
	LevelDiploma: {
		{Code: "BSCS2001", Name: "Database Management Systems", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2002", Name: "Programming, Data Structures and Algorithms using Python", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2003", Name: "Modern Application Development I", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2003P", Name: "Modern Application Development I - Project", Credits: 2, Level: LevelDiploma},
		{Code: "BSCS2005", Name: "Programming Concepts using Java", Credits: 4, Level: LevelDiploma},
		{Code: "BSSE2001", Name: "System Commands", Credits: 3, Level: LevelDiploma},
		{Code: "BSCS2006", Name: "Modern Application Development II", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2006P", Name: "Modern Application Development II - Project", Credits: 2, Level: LevelDiploma},
		{Code: "BSCS2004", Name: "Machine Learning Foundations", Credits: 4, Level: LevelDiploma},
		{Code: "BSSE2002", Name: "Tools in Data Science", Credits: 3, Level: LevelDiploma},
		{Code: "BSMS2001", Name: "Business Data Management", Credits: 4, Level: LevelDiploma},
		{Code: "BSMS2001P", Name: "Business Data Management - Project", Credits: 2, Level: LevelDiploma},
		{Code: "BSCS2007", Name: "Machine Learning Techniques", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2008", Name: "Machine Learning Practice", Credits: 4, Level: LevelDiploma},
		{Code: "BSCS2008P", Name: "Machine Learning Practice - Project", Credits: 2, Level: LevelDiploma},
		{Code: "BSMS2002", Name: "Business Analytics", Credits: 4, Level: LevelDiploma},
	},
	LevelBSc: {
		{Code: "BSCS3001", Name: "Software Engineering", Credits: 4, Level: LevelBSc},
		{Code: "BSCS3002", Name: "Software Testing", Credits: 4, Level: LevelBSc},
		{Code: "BSCS3003", Name: "AI: Search Methods for Problem Solving", Credits: 4, Level: LevelBSc},
		{Code: "BSCS3004", Name: "Deep Learning", Credits: 4, Level: LevelBSc},
		{Code: "BSGN3001", Name: "Strategies for Professional Growth", Credits: 4, Level: LevelBSc},
		{Code: "BSCS3005", Name: "Programming in C", Credits: 4, Level: LevelBSc},
		{Code: "BSMS3001", Name: "Market Research", Credits: 4, Level: LevelBSc},
		{Code: "BSMA3001", Name: "Statistical Computing", Credits: 4, Level: LevelBSc},
	},
	LevelBS: {
		{Code: "BSCS4001", Name: "Large Language Models", Credits: 4, Level: LevelBS},
		{Code: "BSCS4002", Name: "Reinforcement Learning", Credits: 4, Level: LevelBS},
		{Code: "BSCS4003", Name: "Data Visualization Design", Credits: 4, Level: LevelBS},
		{Code: "BSCS4004", Name: "Deep Learning for Computer Vision", Credits: 4, Level: LevelBS},
		{Code: "BSCS4005", Name: "Speech Technology", Credits: 4, Level: LevelBS},
		{Code: "BSMS4001", Name: "Financial Forensics", Credits: 4, Level: LevelBS},
	},
}

var courseIndex = buildCourseIndex()

func buildCourseIndex() map[string]Course {
	index := make(map[string]Course)
	for _, courses := range catalog {
		for _, course := range courses {
			index[course.Code] = course
		}
	}
	return index
}

// Catalog returns the courses offered at level in catalog order.
func Catalog(level Level) []Course {
	return append([]Course(nil), catalog[level]...)
}

// LookupCourse finds a course by code, ignoring case and surrounding space.
func LookupCourse(code string) (Course, bool) {
	course, ok := courseIndex[strings.ToUpper(strings.TrimSpace(code))]
	return course, ok
}
