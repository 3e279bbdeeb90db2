// Package catalog defines the course record model and the JSON collection
// store. A record carries the raw fields extracted from the catalog plus
// the computed requisite AST and reverse-dependency edges.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aucplan/coursegraph/internal/requisite"
)

// Course is one catalog entry. The raw descriptive fields come from the
// scraper untouched; PrerequisiteAST and the two edge lists are attached by
// the pipeline.
type Course struct {
	URL           string `json:"url,omitempty"`
	Title         string `json:"title"`
	Credits       string `json:"credits,omitempty"`
	Description   string `json:"description,omitempty"`
	Prerequisites string `json:"prerequisites"`
	Concurrent    string `json:"concurrent"`
	CrossListed   string `json:"cross_listed,omitempty"`
	Hours         string `json:"hours,omitempty"`
	WhenOffered   string `json:"when_offered,omitempty"`
	Repeatable    string `json:"repeatable,omitempty"`
	Notes         string `json:"notes,omitempty"`

	// Computed metadata derived from the title.
	CourseCode      string `json:"course_code,omitempty"`
	CourseTitle     string `json:"course_title,omitempty"`
	DifficultyLevel int    `json:"difficulty_level,omitempty"`

	PrerequisiteAST   *requisite.AST `json:"prerequisite_ast,omitempty"`
	IsPrerequisiteFor []string       `json:"is_prerequisite_for,omitempty"`
	IsCorequisiteFor  []string       `json:"is_corequisite_for,omitempty"`
}

// joinKeyPattern is the course identity key: 4-letter department plus
// 4-digit number anywhere in the title. Its normalized form (concatenated,
// no separator) must match the code form produced by the requisite parser
// exactly, or edges are silently lost.
var joinKeyPattern = regexp.MustCompile(`([A-Z]{4})\s*(\d{4})`)

// Code derives the join key used by the graph builder from the display
// title, e.g. "CSCE 1101 - Fundamentals..." → "CSCE1101". It returns ""
// when the title yields no code; such a course cannot appear as the source
// or target of an edge.
func (c Course) Code() string {
	m := joinKeyPattern.FindStringSubmatch(c.Title)
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

// Title display patterns, most specific first. Departments are 3 or 4
// letters here (LAW, SCI vs APLN, CSCE); the rigid 4+4 join key above is a
// separate concern.
var (
	titleCrossListed = regexp.MustCompile(`^([A-Z]{3,4}/[A-Z]{3,4})\s+(\d{4})\s+-\s+(.+?)\s+\(.+\)$`)
	titleSequence    = regexp.MustCompile(`^([A-Z]{3,4})\s+([\d-]+)\s+-\s+(.+?)\s+\(.+\)$`)
	titleLab         = regexp.MustCompile(`^([A-Z]{3,4})\s+(\d{4}L)\s+-\s+(.+?)\s+\(.+\)$`)
	titleStandard    = regexp.MustCompile(`^([A-Z]{3,4})\s+(\d{4})\s+-\s+(.+?)\s+\(.+\)$`)
	titleNoParens    = regexp.MustCompile(`^([A-Z]{3,4})\s+(\d{4})\s+-\s+(.+)$`)

	courseNumber = regexp.MustCompile(`\d{4}L?`)
)

// SplitTitle extracts the display course code and course name from a title
// string like "APLN 5331 - Sociolinguistics (3 cr.)". Cross-listed codes
// ("SOC/ANTH 5280"), multi-number sequences ("ALIN 1101-1102-1103-1104",
// which keep only the first number), lab suffixes ("ECNG 1501L") and
// titles without a trailing parenthetical are all recognized. Both results
// are empty when no pattern matches.
func SplitTitle(title string) (code, name string) {
	title = strings.Join(strings.Fields(title), " ")

	if m := titleCrossListed.FindStringSubmatch(title); m != nil {
		return m[1] + " " + m[2], strings.TrimSpace(m[3])
	}
	if m := titleLab.FindStringSubmatch(title); m != nil {
		return m[1] + " " + m[2], strings.TrimSpace(m[3])
	}
	if m := titleSequence.FindStringSubmatch(title); m != nil {
		first := strings.SplitN(m[2], "-", 2)[0]
		return m[1] + " " + first, strings.TrimSpace(m[3])
	}
	if m := titleStandard.FindStringSubmatch(title); m != nil {
		return m[1] + " " + m[2], strings.TrimSpace(m[3])
	}
	if m := titleNoParens.FindStringSubmatch(title); m != nil {
		return m[1] + " " + m[2], strings.TrimSpace(m[3])
	}
	return "", ""
}

// Difficulty maps a display course code to a 1-4 difficulty level from the
// first digit of the course number: 0 counts as 1 and digits above 4 are
// capped at 4. Unparseable codes yield 0.
func Difficulty(code string) int {
	m := courseNumber.FindString(code)
	if m == "" {
		return 0
	}
	m = strings.TrimSuffix(m, "L")
	first, err := strconv.Atoi(m[:1])
	if err != nil {
		return 0
	}
	switch {
	case first == 0:
		return 1
	case first > 4:
		return 4
	default:
		return first
	}
}

// AnnotateMetadata fills CourseCode, CourseTitle and DifficultyLevel from
// the title field, leaving records whose title matches no pattern with
// empty metadata.
func (c *Course) AnnotateMetadata() {
	code, name := SplitTitle(c.Title)
	c.CourseCode = code
	c.CourseTitle = name
	if code != "" {
		c.DifficultyLevel = Difficulty(code)
	}
}
