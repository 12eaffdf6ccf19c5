package rubric

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestParseGroupsByGrade verifies headings open grade groups and explanations are dropped.
func TestParseGroupsByGrade(t *testing.T) {
	got := Parse("A)\n- uses evidence: explanation\nB.\nclear thesis")
	want := Parsed{
		Flat: []string{},
		ByGrade: map[Grade][]string{
			"A": {"uses evidence"},
			"B": {"clear thesis"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
}

// TestParseWithoutHeadings verifies all criteria stay flat without headings.
func TestParseWithoutHeadings(t *testing.T) {
	input := "  - Clear thesis: states a position\n\n* Uses evidence\nOrganized paragraphs  \n"
	got := Parse(input)
	want := Parsed{Flat: []string{"Clear thesis", "Uses evidence", "Organized paragraphs"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
	if got.Grouped() {
		t.Fatalf("expected no grade groups")
	}
}

// TestParseInvalidGradeFallsThrough verifies letters outside A-F are criteria.
func TestParseInvalidGradeFallsThrough(t *testing.T) {
	got := Parse("G\nfoo")
	want := Parsed{Flat: []string{"G", "foo"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
}

// TestParseHeadingsOnlyDropsGroups verifies empty grade groups are removed.
func TestParseHeadingsOnlyDropsGroups(t *testing.T) {
	got := Parse("A\nB\nC")
	if got.ByGrade != nil {
		t.Fatalf("expected byGrade to be dropped, got %v", got.ByGrade)
	}
	if len(got.Flat) != 0 {
		t.Fatalf("expected empty flat, got %v", got.Flat)
	}
}

// TestParseEmptyInput verifies empty input yields an empty flat list.
func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n", "   \n\t"} {
		got := Parse(input)
		if got.Flat == nil || len(got.Flat) != 0 || got.ByGrade != nil {
			t.Fatalf("input %q: unexpected result %#v", input, got)
		}
	}
}

// TestParseHeadingCaseInsensitive verifies lowercase headings open uppercase groups.
func TestParseHeadingCaseInsensitive(t *testing.T) {
	for _, heading := range []string{"a.", "A.", "a", "a)", "A.)", "- a."} {
		got := Parse(heading + "\ncriterion")
		items, ok := got.ByGrade["A"]
		if !ok || len(items) != 1 || items[0] != "criterion" {
			t.Fatalf("heading %q: expected group A, got %#v", heading, got)
		}
	}
}

// TestParseHeadingAfterColonTruncation verifies headings are detected after truncation.
func TestParseHeadingAfterColonTruncation(t *testing.T) {
	got := Parse("B: strong essays\nthesis\nevidence")
	want := Parsed{
		Flat:    []string{},
		ByGrade: map[Grade][]string{"B": {"thesis", "evidence"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
}

// TestParseKeepsFlatBeforeFirstHeading verifies lines before a heading stay flat.
func TestParseKeepsFlatBeforeFirstHeading(t *testing.T) {
	got := Parse("General\nA\nthesis\nB\n")
	want := Parsed{
		Flat:    []string{"General"},
		ByGrade: map[Grade][]string{"A": {"thesis"}, "B": {}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
}

// TestParseRetainsEmptyCriteria verifies colon-only lines become empty criteria.
func TestParseRetainsEmptyCriteria(t *testing.T) {
	got := Parse(": orphan explanation\nthesis")
	want := Parsed{Flat: []string{"", "thesis"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected parse (-want +got):\n%s", diff)
	}
	if criteria := got.Criteria(); len(criteria) != 1 || criteria[0] != "thesis" {
		t.Fatalf("expected empty criteria to be filtered for requests, got %v", criteria)
	}
}

// TestParseRepeatedHeadingResetsGroup verifies a repeated heading starts its group over.
func TestParseRepeatedHeadingResetsGroup(t *testing.T) {
	got := Parse("A\nfirst\nA\nsecond")
	if diff := cmp.Diff([]string{"second"}, got.ByGrade["A"]); diff != "" {
		t.Fatalf("unexpected group A (-want +got):\n%s", diff)
	}
}

// TestParseIdempotentOnFlat verifies reparsing flat output is stable.
func TestParseIdempotentOnFlat(t *testing.T) {
	inputs := []string{
		"- Clear thesis: explained\n* Evidence\nConclusion restates thesis",
		"Organization\n\n\nGrammar and syntax: fewer than 3 errors",
		"Uses quotations\nCites sources (MLA)",
	}
	for _, input := range inputs {
		first := Parse(input)
		second := Parse(strings.Join(first.Flat, "\n"))
		if diff := cmp.Diff(first.Flat, second.Flat); diff != "" {
			t.Fatalf("input %q not idempotent (-first +second):\n%s", input, diff)
		}
	}
}

// TestParsedJSONShape verifies byGrade is omitted when absent and flat is never null.
func TestParsedJSONShape(t *testing.T) {
	data, err := json.Marshal(Parse("A\nB"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"flat":[]}` {
		t.Fatalf("unexpected json: %s", data)
	}
	data, err = json.Marshal(Parse("c)\nthesis"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"flat":[],"byGrade":{"C":["thesis"]}}` {
		t.Fatalf("unexpected json: %s", data)
	}
}

// TestCriteriaOrdersFlatThenGrades verifies request shaping order.
func TestCriteriaOrdersFlatThenGrades(t *testing.T) {
	parsed := Parse("intro\nC\nthird\nA\nfirst\nB\nsecond")
	want := []string{"intro", "first", "second", "third"}
	if diff := cmp.Diff(want, parsed.Criteria()); diff != "" {
		t.Fatalf("unexpected criteria (-want +got):\n%s", diff)
	}
	grade, ok := parsed.GradeOf("second")
	if !ok || grade != "B" {
		t.Fatalf("expected second under B, got %q %v", grade, ok)
	}
	if _, ok := parsed.GradeOf("intro"); ok {
		t.Fatalf("expected intro to be ungrouped")
	}
}
