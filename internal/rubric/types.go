package rubric

import "sort"

// Grade is a letter grade heading, A through F.
type Grade string

// Grades lists the recognised grade headings in display order.
var Grades = []Grade{"A", "B", "C", "D", "E", "F"}

// Parsed is the result of parsing rubric text.
//
// ByGrade is nil unless at least one grade heading was seen and at least one
// criterion was collected under a heading.
type Parsed struct {
	Flat    []string           `json:"flat"`
	ByGrade map[Grade][]string `json:"byGrade,omitempty"`
}

// Grouped reports whether criteria were grouped under grade headings.
func (p Parsed) Grouped() bool {
	return p.ByGrade != nil
}

// GradeKeys returns the grades present in ByGrade, sorted A to F.
func (p Parsed) GradeKeys() []Grade {
	if p.ByGrade == nil {
		return nil
	}
	keys := make([]Grade, 0, len(p.ByGrade))
	for grade := range p.ByGrade {
		keys = append(keys, grade)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Criteria flattens the parsed rubric into the list sent to the scoring
// service: Flat first, then each grade group from A to F. Empty criteria are
// dropped here even though Parse keeps them.
func (p Parsed) Criteria() []string {
	out := make([]string, 0, len(p.Flat))
	appendNonEmpty := func(values []string) {
		for _, value := range values {
			if value != "" {
				out = append(out, value)
			}
		}
	}
	appendNonEmpty(p.Flat)
	for _, grade := range p.GradeKeys() {
		appendNonEmpty(p.ByGrade[grade])
	}
	return out
}

// GradeOf returns the grade group a criterion was listed under. The second
// result is false for ungrouped criteria.
func (p Parsed) GradeOf(criterion string) (Grade, bool) {
	for _, grade := range p.GradeKeys() {
		for _, candidate := range p.ByGrade[grade] {
			if candidate == criterion {
				return grade, true
			}
		}
	}
	return "", false
}

// Count returns the number of criteria, including empty ones.
func (p Parsed) Count() int {
	total := len(p.Flat)
	for _, items := range p.ByGrade {
		total += len(items)
	}
	return total
}
