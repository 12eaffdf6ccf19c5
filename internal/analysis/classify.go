package analysis

import (
	"essaylens/internal/rubric"
	"essaylens/internal/scoring"
)

// Bucket groups a criterion by how well the essay covered it.
type Bucket string

const (
	BucketMet     Bucket = "met"
	BucketPartial Bucket = "partial"
	BucketMissing Bucket = "missing"
)

// Policy decides when a score counts as met.
type Policy string

const (
	// PolicyFull: met when score reaches max_score, partial when between.
	PolicyFull Policy = "full"
	// PolicyAny: met when score is above zero. Nothing is partial.
	PolicyAny Policy = "any"
)

// Classify buckets a single match.
func Classify(match scoring.Match, policy Policy) Bucket {
	if match.Score <= 0 {
		return BucketMissing
	}
	if policy == PolicyAny {
		return BucketMet
	}
	maxScore := match.MaxScore
	if maxScore <= 0 {
		maxScore = 1
	}
	if match.Score >= maxScore {
		return BucketMet
	}
	return BucketPartial
}

// ClassifiedMatch is a match with its bucket, grade group and final
// suggestion text.
type ClassifiedMatch struct {
	scoring.Match
	Bucket           Bucket       `json:"bucket"`
	Grade            rubric.Grade `json:"grade,omitempty"`
	SuggestionSource string       `json:"suggestion_source,omitempty"`
}

// ClassifyMatches buckets matches in response order and attaches grades
// from parsed.
func ClassifyMatches(parsed rubric.Parsed, matches []scoring.Match, policy Policy) []ClassifiedMatch {
	out := make([]ClassifiedMatch, 0, len(matches))
	for _, match := range matches {
		if match.MaxScore <= 0 {
			match.MaxScore = 1
		}
		classified := ClassifiedMatch{Match: match, Bucket: Classify(match, policy)}
		if grade, ok := parsed.GradeOf(match.Criterion); ok {
			classified.Grade = grade
		}
		out = append(out, classified)
	}
	return out
}

// ClassifyAll runs ClassifyMatches, then appends a missing entry for every
// requested criterion the service did not return.
func ClassifyAll(parsed rubric.Parsed, matches []scoring.Match, policy Policy) []ClassifiedMatch {
	out := ClassifyMatches(parsed, matches, policy)
	seen := make(map[string]struct{}, len(out))
	for _, match := range out {
		seen[match.Criterion] = struct{}{}
	}
	for _, criterion := range parsed.Criteria() {
		if _, ok := seen[criterion]; ok {
			continue
		}
		seen[criterion] = struct{}{}
		missing := ClassifiedMatch{
			Match:  scoring.Match{Criterion: criterion, MaxScore: 1},
			Bucket: BucketMissing,
		}
		if grade, ok := parsed.GradeOf(criterion); ok {
			missing.Grade = grade
		}
		out = append(out, missing)
	}
	return out
}

// Summary counts matches per bucket.
type Summary struct {
	Met      int     `json:"met"`
	Partial  int     `json:"partial"`
	Missing  int     `json:"missing"`
	Total    int     `json:"total"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// Percent returns Score as a share of MaxScore in [0,100].
func (s Summary) Percent() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	pct := s.Score / s.MaxScore * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Count returns the number of matches in bucket.
func (s Summary) Count(bucket Bucket) int {
	switch bucket {
	case BucketMet:
		return s.Met
	case BucketPartial:
		return s.Partial
	case BucketMissing:
		return s.Missing
	}
	return 0
}

// Buckets lists buckets in display order.
var Buckets = []Bucket{BucketMet, BucketPartial, BucketMissing}

// Summarize tallies classified matches.
func Summarize(matches []ClassifiedMatch) Summary {
	var summary Summary
	for _, match := range matches {
		summary.Total++
		switch match.Bucket {
		case BucketMet:
			summary.Met++
		case BucketPartial:
			summary.Partial++
		case BucketMissing:
			summary.Missing++
		}
		score := match.Score
		if score > match.MaxScore {
			score = match.MaxScore
		}
		if score > 0 {
			summary.Score += score
		}
		summary.MaxScore += match.MaxScore
	}
	return summary
}

// GradeCoverage reports how many criteria of one grade group were met.
type GradeCoverage struct {
	Grade rubric.Grade `json:"grade"`
	Met   int          `json:"met"`
	Total int          `json:"total"`
}

// Coverage computes per-grade coverage. It is empty for ungrouped rubrics.
func Coverage(parsed rubric.Parsed, matches []ClassifiedMatch) []GradeCoverage {
	if !parsed.Grouped() {
		return nil
	}
	buckets := make(map[string]Bucket, len(matches))
	for _, match := range matches {
		if _, ok := buckets[match.Criterion]; !ok {
			buckets[match.Criterion] = match.Bucket
		}
	}
	coverage := make([]GradeCoverage, 0, len(parsed.ByGrade))
	for _, grade := range parsed.GradeKeys() {
		entry := GradeCoverage{Grade: grade}
		for _, criterion := range parsed.ByGrade[grade] {
			if criterion == "" {
				continue
			}
			entry.Total++
			if buckets[criterion] == BucketMet {
				entry.Met++
			}
		}
		coverage = append(coverage, entry)
	}
	return coverage
}
