package analysis

import (
	"context"
	"errors"
	"testing"

	"essaylens/internal/scoring"
)

type stubSuggester struct {
	text string
	err  error
	reqs []SuggestionRequest
}

func (s *stubSuggester) Name() string { return "stub" }

func (s *stubSuggester) Suggest(_ context.Context, req SuggestionRequest) (string, error) {
	s.reqs = append(s.reqs, req)
	return s.text, s.err
}

// TestPlaceholderText verifies the generic advice per bucket.
func TestPlaceholderText(t *testing.T) {
	if got := PlaceholderText("thesis", BucketMissing); got != `Add a passage that addresses "thesis".` {
		t.Fatalf("unexpected missing text %q", got)
	}
	if got := PlaceholderText("thesis", BucketPartial); got != `Develop "thesis" further with more specific support.` {
		t.Fatalf("unexpected partial text %q", got)
	}
	if got := PlaceholderText("thesis", BucketMet); got != "" {
		t.Fatalf("expected no advice for met, got %q", got)
	}
}

// TestResolveSuggestionsKeepsServiceText verifies service suggestions win.
func TestResolveSuggestionsKeepsServiceText(t *testing.T) {
	stub := &stubSuggester{text: "stub advice"}
	matches := []ClassifiedMatch{
		{Match: scoring.Match{Criterion: "a", Suggestion: "from service"}, Bucket: BucketMissing},
		{Match: scoring.Match{Criterion: "b", Section: "Body", Snippet: "s"}, Bucket: BucketPartial},
		{Match: scoring.Match{Criterion: "c"}, Bucket: BucketMet},
	}
	ResolveSuggestions(context.Background(), stub, "essay", matches, nil)

	if matches[0].Suggestion != "from service" || matches[0].SuggestionSource != SourceService {
		t.Fatalf("unexpected service match %+v", matches[0])
	}
	if matches[1].Suggestion != "stub advice" || matches[1].SuggestionSource != "stub" {
		t.Fatalf("unexpected suggested match %+v", matches[1])
	}
	if matches[2].Suggestion != "" || matches[2].SuggestionSource != "" {
		t.Fatalf("met criterion should have no suggestion, got %+v", matches[2])
	}
	if len(stub.reqs) != 1 || stub.reqs[0].Section != "Body" || stub.reqs[0].Essay != "essay" {
		t.Fatalf("unexpected suggester requests %+v", stub.reqs)
	}
}

// TestResolveSuggestionsFallsBack verifies suggester errors use the placeholder.
func TestResolveSuggestionsFallsBack(t *testing.T) {
	stub := &stubSuggester{err: errors.New("quota")}
	matches := []ClassifiedMatch{{Match: scoring.Match{Criterion: "thesis"}, Bucket: BucketMissing}}
	ResolveSuggestions(context.Background(), stub, "", matches, nil)

	if matches[0].Suggestion != PlaceholderText("thesis", BucketMissing) {
		t.Fatalf("unexpected fallback %q", matches[0].Suggestion)
	}
	if matches[0].SuggestionSource != SourcePlaceholder {
		t.Fatalf("unexpected source %q", matches[0].SuggestionSource)
	}
}
