package scoring

import (
	"fmt"
	"os"
	"path/filepath"
)

// Section is one structural segment of an essay as returned by /structure.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Snippet is a sentence the service matched against a criterion.
type Snippet struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
}

// Match is the service's score for one rubric criterion.
type Match struct {
	Criterion  string    `json:"criterion"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Section    string    `json:"section"`
	Snippet    string    `json:"snippet"`
	Suggestion string    `json:"suggestion,omitempty"`
	Snippets   []Snippet `json:"snippets,omitempty"`
}

// Upload is a file sent to a multipart endpoint.
type Upload struct {
	Name string
	Data []byte
}

// LoadUpload reads a file from disk into an Upload named after its base name.
func LoadUpload(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("read upload %s: %w", path, err)
	}
	return Upload{Name: filepath.Base(path), Data: data}, nil
}

// wireMatch accepts both response shapes: the documented one with max_score
// and snippet, and the backend's snippets list with max_score omitted.
type wireMatch struct {
	Criterion  string    `json:"criterion"`
	Score      float64   `json:"score"`
	MaxScore   *float64  `json:"max_score"`
	Section    string    `json:"section"`
	Snippet    string    `json:"snippet"`
	Suggestion *string   `json:"suggestion"`
	Snippets   []Snippet `json:"snippets"`
}

// normalize fills max_score and snippet defaults.
func (w wireMatch) normalize() Match {
	match := Match{
		Criterion: w.Criterion,
		Score:     w.Score,
		MaxScore:  1,
		Section:   w.Section,
		Snippet:   w.Snippet,
		Snippets:  w.Snippets,
	}
	if w.MaxScore != nil && *w.MaxScore > 0 {
		match.MaxScore = *w.MaxScore
	}
	if match.Snippet == "" && len(w.Snippets) > 0 {
		match.Snippet = w.Snippets[0].Sentence
	}
	if w.Suggestion != nil {
		match.Suggestion = *w.Suggestion
	}
	return match
}

func normalizeMatches(wire []wireMatch) []Match {
	matches := make([]Match, 0, len(wire))
	for _, w := range wire {
		matches = append(matches, w.normalize())
	}
	return matches
}
