package prompt

import (
	"strings"
	"testing"

	"essaylens/internal/analysis"
	"essaylens/internal/testutil"
)

// TestRenderSuggestion verifies the prompt carries the criterion context.
func TestRenderSuggestion(t *testing.T) {
	text, err := RenderSuggestion(testutil.Context(t, 0), analysis.SuggestionRequest{
		Criterion: "Uses evidence",
		Bucket:    analysis.BucketPartial,
		Section:   "Body",
		Snippet:   "for example",
		Essay:     "An essay.",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Rubric criterion: Uses evidence",
		"only partially",
		"Closest section: Body",
		`Closest passage: "for example"`,
		"Essay:\nAn essay.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, text)
		}
	}
}

// TestRenderSuggestionMissing verifies optional fields are left out.
func TestRenderSuggestionMissing(t *testing.T) {
	text, err := RenderSuggestion(testutil.Context(t, 0), analysis.SuggestionRequest{Criterion: "Thesis", Bucket: analysis.BucketMissing})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(text, "does not address") {
		t.Fatalf("expected missing wording:\n%s", text)
	}
	if strings.Contains(text, "Closest") || strings.Contains(text, "Essay:") {
		t.Fatalf("expected no optional lines:\n%s", text)
	}
}

// TestRenderSuggestionTruncatesEssay verifies long essays are cut by rune.
func TestRenderSuggestionTruncatesEssay(t *testing.T) {
	text, err := RenderSuggestion(testutil.Context(t, 0), analysis.SuggestionRequest{
		Criterion: "c",
		Essay:     strings.Repeat("é", MaxEssayRunes+50),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Count(text, "é") != MaxEssayRunes {
		t.Fatalf("expected essay truncated to %d runes", MaxEssayRunes)
	}
}
