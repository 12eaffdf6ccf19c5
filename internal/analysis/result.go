package analysis

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"essaylens/internal/rubric"
	"essaylens/internal/scoring"
)

// Descriptor records what an analysis ran on.
type Descriptor struct {
	EssaySource  string       `json:"essay_source"`
	RubricSource string       `json:"rubric_source"`
	Mode         Mode         `json:"mode"`
	RubricFlow   RubricFlow   `json:"rubric_flow"`
	RubricFormat RubricFormat `json:"rubric_format"`
	Policy       Policy       `json:"policy"`
	RubricID     string       `json:"rubric_id,omitempty"`
	ServiceURL   string       `json:"service_url,omitempty"`
}

// Result is the outcome of one successful analysis.
type Result struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Input      Descriptor        `json:"input"`
	EssayText  string            `json:"essay_text,omitempty"`
	Rubric     rubric.Parsed     `json:"rubric"`
	Sections   []scoring.Section `json:"sections"`
	Matches    []ClassifiedMatch `json:"matches"`
	Summary    Summary           `json:"summary"`
	Coverage   []GradeCoverage   `json:"coverage,omitempty"`
}

// Duration returns the wall time of the run.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Essay returns the analysed essay text, or the sections joined when the
// essay was a PDF.
func (r Result) Essay() string {
	if r.EssayText != "" {
		return r.EssayText
	}
	parts := make([]string, 0, len(r.Sections))
	for _, section := range r.Sections {
		parts = append(parts, section.Text)
	}
	return strings.Join(parts, "\n\n")
}

const runIDSuffixBytes = 6

// NewRunID returns a sortable run id such as 20260102T150405Z-a1b2c3d4e5f6.
func NewRunID(now time.Time) (string, error) {
	return NewRunIDWithRand(now, rand.Reader)
}

// NewRunIDWithRand is NewRunID with an injectable entropy source.
func NewRunIDWithRand(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	buf := make([]byte, runIDSuffixBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return FormatRunID(now, hex.EncodeToString(buf)), nil
}

// FormatRunID joins a UTC timestamp and suffix.
func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}
