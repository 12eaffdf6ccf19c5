package rubric

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Boilerplate lines found in scanned College Board rubrics.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^AP® English Language and Composition`),
	regexp.MustCompile(`^©\s*\d{4}\s*College Board`),
	regexp.MustCompile(`^Reporting$`),
	regexp.MustCompile(`^Category$`),
	regexp.MustCompile(`^Scoring Criteria$`),
}

var (
	hyphenBreakPattern = regexp.MustCompile(`-\s*\n`)
	newlineRunPattern  = regexp.MustCompile(`\n+`)
	rowCriterion       = regexp.MustCompile(`(?i)^Row\s+[A-Z]\s+(.+?)\s*\(\s*\d+(?:-\d+)?\s*points?\)`)
	pointsCriterion    = regexp.MustCompile(`(?i)^(.+?)\s*\(\s*\d+(?:-\d+)?\s*points?\)`)
)

// Segment cleans text extracted from a rubric document and splits it into
// paragraphs. Text is NFKC normalized so ligatures from PDF extraction
// become plain letters. Boilerplate header and footer lines are removed,
// hyphenated line breaks are rejoined and the remaining line breaks inside a
// paragraph become spaces.
func Segment(text string) []string {
	text = norm.NFKC.String(text)
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraphs = append(paragraphs, normalizeParagraph(strings.Join(current, "\n")))
		current = nil
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if isBoilerplate(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}

// PointCriteria extracts criterion names from paragraphs shaped like
// "Row A Thesis (0-1 points)" or "Evidence and Commentary (4 points)".
// Names matched by the generic form are deduplicated.
func PointCriteria(paragraphs []string) []string {
	criteria := []string{}
	for _, para := range paragraphs {
		if match := rowCriterion.FindStringSubmatch(para); match != nil {
			criteria = append(criteria, strings.TrimSpace(match[1]))
			continue
		}
		if match := pointsCriterion.FindStringSubmatch(para); match != nil {
			name := strings.TrimSpace(match[1])
			if !contains(criteria, name) {
				criteria = append(criteria, name)
			}
		}
	}
	return criteria
}

// ParsePoints runs Segment and PointCriteria and wraps the names as a flat
// rubric.
func ParsePoints(text string) Parsed {
	return Parsed{Flat: PointCriteria(Segment(text))}
}

func isBoilerplate(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, pattern := range boilerplatePatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func normalizeParagraph(para string) string {
	para = hyphenBreakPattern.ReplaceAllString(para, "")
	para = newlineRunPattern.ReplaceAllString(para, " ")
	return strings.TrimSpace(para)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
