// Package rubric turns pasted or uploaded rubric text into criteria.
package rubric

import (
	"regexp"
	"strings"
)

var (
	bulletPattern  = regexp.MustCompile(`^[-*]\s+`)
	headingPattern = regexp.MustCompile(`^([A-Fa-f])\.?\)?$`)
)

// Parse classifies rubric lines into criteria, grouping them under letter
// grade headings (A-F) when the rubric uses them. It never fails.
func Parse(text string) Parsed {
	parsed := Parsed{Flat: []string{}, ByGrade: map[Grade][]string{}}
	var current Grade
	for _, line := range Lines(text) {
		line = stripBullet(line)
		line = truncateAtColon(line)
		if grade, ok := headingGrade(line); ok {
			current = grade
			parsed.ByGrade[current] = []string{}
			continue
		}
		if current != "" {
			parsed.ByGrade[current] = append(parsed.ByGrade[current], line)
			continue
		}
		parsed.Flat = append(parsed.Flat, line)
	}
	if !hasGroupedCriteria(parsed.ByGrade) {
		parsed.ByGrade = nil
	}
	return parsed
}

// Lines splits text into trimmed, non-blank lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// IsHeading reports whether a processed line is a grade heading.
func IsHeading(line string) bool {
	_, ok := headingGrade(line)
	return ok
}

// stripBullet removes a leading "- " or "* " marker.
func stripBullet(line string) string {
	return bulletPattern.ReplaceAllString(line, "")
}

// truncateAtColon drops a ": explanation" suffix. A line that starts with a
// colon becomes the empty string.
func truncateAtColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return line
	}
	return strings.TrimSpace(line[:idx])
}

// headingGrade returns the uppercased grade for a heading line.
func headingGrade(line string) (Grade, bool) {
	match := headingPattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return Grade(strings.ToUpper(match[1])), true
}

func hasGroupedCriteria(byGrade map[Grade][]string) bool {
	for _, items := range byGrade {
		if len(items) > 0 {
			return true
		}
	}
	return false
}
