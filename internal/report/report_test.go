package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"essaylens/internal/analysis"
	"essaylens/internal/rubric"
	"essaylens/internal/scoring"
)

func sampleResult(runID string) analysis.Result {
	parsed := rubric.Parse("A\nclear thesis\nB\nuses evidence\nC\ncounterargument")
	matches := analysis.ClassifyAll(parsed, []scoring.Match{
		{Criterion: "clear thesis", Score: 1, MaxScore: 1, Section: "Introduction", Snippet: "I argue that cities need trees."},
		{Criterion: "uses evidence", Score: 0.4, MaxScore: 1, Section: "Body", Snippet: "Shade lowers <heat>."},
	}, analysis.PolicyFull)
	analysis.ResolveSuggestions(context.Background(), analysis.Placeholder{}, "", matches, nil)
	return analysis.Result{
		RunID:      runID,
		StartedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 9, 0, 2, 0, time.UTC),
		Input: analysis.Descriptor{
			EssaySource:  "essay.txt",
			RubricSource: "rubric.txt",
			Mode:         analysis.ModeText,
			RubricFlow:   analysis.FlowList,
			RubricFormat: analysis.FormatLines,
			Policy:       analysis.PolicyFull,
		},
		Rubric: parsed,
		Sections: []scoring.Section{
			{Name: "Introduction", Text: "I argue that cities need trees. They help."},
			{Name: "Body", Text: "Shade lowers <heat>. Costs are low."},
		},
		Matches:  matches,
		Summary:  analysis.Summarize(matches),
		Coverage: analysis.Coverage(parsed, matches),
	}
}

// TestHighlightMarksSnippets verifies snippets split section text into segments.
func TestHighlightMarksSnippets(t *testing.T) {
	matches := []analysis.ClassifiedMatch{
		{Match: scoring.Match{Criterion: "thesis", Snippet: "cities need trees"}, Bucket: analysis.BucketMet},
		{Match: scoring.Match{Criterion: "overlap", Snippet: "need"}, Bucket: analysis.BucketPartial},
		{Match: scoring.Match{Criterion: "extra", Snippets: []scoring.Snippet{{Sentence: "They help."}}}, Bucket: analysis.BucketPartial},
		{Match: scoring.Match{Criterion: "absent", Snippet: "not in text"}, Bucket: analysis.BucketMissing},
	}
	got := Highlight("I argue that cities need trees. They help.", matches)
	want := []Segment{
		{Text: "I argue that "},
		{Text: "cities need trees", Criterion: "thesis", Bucket: analysis.BucketMet},
		{Text: ". "},
		{Text: "They help.", Criterion: "extra", Bucket: analysis.BucketPartial},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
}

// TestHighlightWithoutMatches verifies plain text comes back as one segment.
func TestHighlightWithoutMatches(t *testing.T) {
	got := Highlight("plain", nil)
	if len(got) != 1 || got[0].Text != "plain" || got[0].Highlighted() {
		t.Fatalf("unexpected segments %+v", got)
	}
	if len(Highlight("", nil)) != 0 {
		t.Fatalf("expected no segments for empty text")
	}
}

// TestRenderHTMLIncludesReportParts verifies the HTML report content and escaping.
func TestRenderHTMLIncludesReportParts(t *testing.T) {
	html, err := RenderHTML(context.Background(), sampleResult("20260301T090000Z-aaaaaaaaaaaa"))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	for _, token := range []string{
		"20260301T090000Z-aaaaaaaaaaaa",
		"<table",
		`class="bar met"`,
		`<mark class="met" title="clear thesis">I argue that cities need trees.</mark>`,
		"Shade lowers &lt;heat&gt;.",
		"Grade coverage",
		`Add a passage that addresses &#34;counterargument&#34;.`,
	} {
		if !strings.Contains(html, token) {
			t.Fatalf("expected report to include %q", token)
		}
	}
	if strings.Contains(html, "<heat>") {
		t.Fatalf("expected essay text to be escaped")
	}
}

// TestMarkdownReport verifies the Markdown report tables and highlights.
func TestMarkdownReport(t *testing.T) {
	md := Markdown(sampleResult("run-1"))
	for _, token := range []string{
		"# Essay analysis",
		"| Met | 1 |",
		"| Partial | 1 |",
		"| Missing | 1 |",
		"| clear thesis | Met | 1 / 1 | Introduction |",
		"| uses evidence | Partial | 0.4 / 1 | Body |",
		"**I argue that cities need trees.**",
		"| A | 1 | 1 |",
	} {
		if !strings.Contains(md, token) {
			t.Fatalf("expected markdown to include %q:\n%s", token, md)
		}
	}
}

// TestRenderTerminal verifies glamour renders the Markdown report.
func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal(Markdown(sampleResult("run-1")), "notty", 100)
	if err != nil {
		t.Fatalf("render terminal: %v", err)
	}
	if !strings.Contains(out, "Essay analysis") || !strings.Contains(out, "clear thesis") {
		t.Fatalf("unexpected terminal output:\n%s", out)
	}
}

// TestWriteOutputsAndResolveRun verifies outputs round-trip and runs resolve by id, prefix and latest.
func TestWriteOutputsAndResolveRun(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	first := sampleResult("20260301T090000Z-aaaaaaaaaaaa")
	written, err := WriteOutputs(ctx, first, root, []string{FormatJSON, FormatHTML, FormatMarkdown})
	if err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	if len(written.Files) != 3 {
		t.Fatalf("expected three files, got %v", written.Files)
	}
	for _, path := range written.Files {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	second := sampleResult("20260302T090000Z-bbbbbbbbbbbb")
	if _, err := WriteOutputs(ctx, second, root, nil); err != nil {
		t.Fatalf("write outputs: %v", err)
	}

	loaded, dir, err := ResolveRun(root, "latest")
	if err != nil {
		t.Fatalf("resolve latest: %v", err)
	}
	if loaded.RunID != second.RunID || dir != filepath.Join(root, second.RunID) {
		t.Fatalf("unexpected latest run %s in %s", loaded.RunID, dir)
	}
	loaded, _, err = ResolveRun(root, "20260301")
	if err != nil {
		t.Fatalf("resolve prefix: %v", err)
	}
	if diff := cmp.Diff(first, loaded); diff != "" {
		t.Fatalf("result round-trip mismatch (-want +got):\n%s", diff)
	}
	if _, _, err := ResolveRun(root, "2026"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguous ref error, got %v", err)
	}
	if _, _, err := ResolveRun(root, "missing"); err == nil {
		t.Fatalf("expected missing run error")
	}

	runs, err := ListRuns(root)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != second.RunID || runs[0].HasHTML || !runs[1].HasHTML {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

// TestWriteOutputsRejectsBadInput verifies format and run id checks.
func TestWriteOutputsRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	if _, err := WriteOutputs(ctx, sampleResult("run"), t.TempDir(), []string{"pdf"}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if _, err := WriteOutputs(ctx, sampleResult("../escape"), t.TempDir(), nil); err == nil {
		t.Fatalf("expected invalid run id error")
	}
	if _, err := WriteOutputs(ctx, sampleResult("run"), "", nil); err == nil {
		t.Fatalf("expected missing dir error")
	}
}

// TestListRunsMissingDir verifies a missing results dir lists nothing.
func TestListRunsMissingDir(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "none"))
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty listing, got %v %v", runs, err)
	}
}
