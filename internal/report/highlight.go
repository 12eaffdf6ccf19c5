package report

import (
	"sort"
	"strings"

	"essaylens/internal/analysis"
	"essaylens/internal/scoring"
)

// Segment is a run of section text, highlighted when Criterion is set.
type Segment struct {
	Text      string
	Criterion string
	Bucket    analysis.Bucket
}

// Highlighted reports whether the segment belongs to a matched snippet.
func (s Segment) Highlighted() bool {
	return s.Criterion != ""
}

type span struct {
	start, end int
	criterion  string
	bucket     analysis.Bucket
}

// Highlight splits text into segments, marking the first occurrence of each
// match snippet. Overlapping snippets keep the earlier match.
func Highlight(text string, matches []analysis.ClassifiedMatch) []Segment {
	var spans []span
	for _, match := range matches {
		for _, snippet := range snippetsOf(match.Match) {
			idx := strings.Index(text, snippet)
			if idx < 0 {
				continue
			}
			candidate := span{start: idx, end: idx + len(snippet), criterion: match.Criterion, bucket: match.Bucket}
			if overlaps(spans, candidate) {
				continue
			}
			spans = append(spans, candidate)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	segments := make([]Segment, 0, len(spans)*2+1)
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			segments = append(segments, Segment{Text: text[pos:s.start]})
		}
		segments = append(segments, Segment{Text: text[s.start:s.end], Criterion: s.criterion, Bucket: s.bucket})
		pos = s.end
	}
	if pos < len(text) {
		segments = append(segments, Segment{Text: text[pos:]})
	}
	return segments
}

// SectionView pairs a section with its highlighted segments.
type SectionView struct {
	Section  scoring.Section
	Segments []Segment
}

// Sections highlights every section of a result.
func Sections(result analysis.Result) []SectionView {
	views := make([]SectionView, 0, len(result.Sections))
	for _, section := range result.Sections {
		views = append(views, SectionView{Section: section, Segments: Highlight(section.Text, result.Matches)})
	}
	return views
}

func snippetsOf(match scoring.Match) []string {
	var out []string
	add := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		for _, existing := range out {
			if existing == text {
				return
			}
		}
		out = append(out, text)
	}
	add(match.Snippet)
	for _, snippet := range match.Snippets {
		add(snippet.Sentence)
	}
	return out
}

func overlaps(spans []span, candidate span) bool {
	for _, s := range spans {
		if candidate.start < s.end && s.start < candidate.end {
			return true
		}
	}
	return false
}
