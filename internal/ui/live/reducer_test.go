package live

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"essaylens/internal/analysis"
	"essaylens/internal/scoring"
)

func sampleResult() *analysis.Result {
	matches := []analysis.ClassifiedMatch{
		{Match: scoring.Match{Criterion: "Thesis", Score: 1, MaxScore: 1, Section: "Intro", Snippet: "Cities should plant trees"}, Bucket: analysis.BucketMet},
		{Match: scoring.Match{Criterion: "Evidence", Score: 0.5, MaxScore: 1, Section: "Body", Snippet: "shade lowers temperatures", Suggestion: "Develop it."}, Bucket: analysis.BucketPartial},
		{Match: scoring.Match{Criterion: "Counterargument", MaxScore: 1}, Bucket: analysis.BucketMissing},
	}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &analysis.Result{
		RunID:      "20260301T090000Z-abababababab",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Input:      analysis.Descriptor{EssaySource: "essay.txt", RubricSource: "rubric.txt", Mode: analysis.ModeText, RubricFlow: analysis.FlowList},
		Sections: []scoring.Section{
			{Name: "Intro", Text: "Cities should plant trees."},
			{Name: "Body", Text: "Because shade lowers temperatures in summer."},
		},
		Matches: matches,
		Summary: analysis.Summarize(matches),
	}
}

func step(seq uint64, name analysis.Step, status analysis.StepStatus) Event {
	return Event{Kind: EventStep, Seq: seq, Step: analysis.StepEvent{Seq: seq, Step: name, Status: status, Duration: 120 * time.Millisecond}}
}

// TestReduceRunLifecycle verifies steps and the result are recorded.
func TestReduceRunLifecycle(t *testing.T) {
	now := time.Now()
	state := Reduce(State{}, Event{Kind: EventRunStart, Seq: 1, Input: analysis.Descriptor{EssaySource: "essay.txt"}}, now)
	if !state.Busy() || state.Runs != 1 {
		t.Fatalf("expected busy first run, got %+v", state)
	}
	state = Reduce(state, step(1, analysis.StepStructure, analysis.StepStarted), now)
	state = Reduce(state, step(1, analysis.StepStructure, analysis.StepFinished), now)
	state = Reduce(state, step(1, analysis.StepScore, analysis.StepStarted), now)
	if len(state.Steps) != 2 || state.Steps[0].Status != analysis.StepFinished {
		t.Fatalf("unexpected steps %+v", state.Steps)
	}
	result := sampleResult()
	state = Reduce(state, Event{Kind: EventRunEnd, Seq: 1, Result: result}, now)
	if state.Phase != analysis.PhaseSuccess || state.Result != result {
		t.Fatalf("expected success with result, got %+v", state)
	}
	if !strings.Contains(state.LastEvent, result.RunID) {
		t.Fatalf("expected run id in last event, got %q", state.LastEvent)
	}
}

// TestReduceDropsStaleEvents verifies events from superseded runs are ignored.
func TestReduceDropsStaleEvents(t *testing.T) {
	now := time.Now()
	state := Reduce(State{}, Event{Kind: EventRunStart, Seq: 1}, now)
	state = Reduce(state, Event{Kind: EventRunStart, Seq: 2}, now)
	state = Reduce(state, step(1, analysis.StepStructure, analysis.StepStarted), now)
	state = Reduce(state, Event{Kind: EventRunEnd, Seq: 1, Err: "context canceled"}, now)
	if state.Seq != 2 || !state.Busy() || len(state.Steps) != 0 || state.Err != "" {
		t.Fatalf("stale events changed state: %+v", state)
	}
	if state.Runs != 2 {
		t.Fatalf("expected two runs counted, got %d", state.Runs)
	}
}

// TestReduceFailure verifies failures keep the failing step and message.
func TestReduceFailure(t *testing.T) {
	now := time.Now()
	state := Reduce(State{}, Event{Kind: EventRunStart, Seq: 3}, now)
	failed := step(3, analysis.StepScore, analysis.StepFailed)
	failed.Step.Error = "502 bad gateway"
	state = Reduce(state, failed, now)
	if !strings.Contains(state.LastEvent, "score failed: 502 bad gateway") {
		t.Fatalf("unexpected last event %q", state.LastEvent)
	}
	state = Reduce(state, Event{Kind: EventRunEnd, Seq: 3, Err: "score: 502 bad gateway"}, now)
	if state.Phase != analysis.PhaseFailure || state.Err == "" || state.Result != nil {
		t.Fatalf("expected failure state, got %+v", state)
	}
}

// TestModelViewRendersResult verifies the summary, table and highlights.
func TestModelViewRendersResult(t *testing.T) {
	events := make(chan Event, 4)
	model := NewModel(events, Options{NoColor: true, Hold: true})
	model = applyEvent(model, Event{Kind: EventRunStart, Seq: 1, Input: sampleResult().Input})
	model = applyEvent(model, Event{Kind: EventRunEnd, Seq: 1, Result: sampleResult()})

	view := model.View()
	for _, token := range []string{
		"essay.txt against rubric.txt",
		"Score 1.5/3 (50.0%)",
		"Met",
		"Partial",
		"Missing",
		"Thesis",
		"Counterargument",
		"[Cities should plant trees]",
		"[shade lowers temperatures]",
	} {
		if !strings.Contains(view, token) {
			t.Fatalf("expected view to contain %q:\n%s", token, view)
		}
	}
}

// TestModelHoldsAfterClose verifies the view stays open when Hold is set.
func TestModelHoldsAfterClose(t *testing.T) {
	held := NewModel(nil, Options{NoColor: true, Hold: true})
	next, cmd := held.Update(closedMsg{})
	if cmd != nil {
		t.Fatalf("expected no quit command while holding")
	}
	if !next.(Model).closed {
		t.Fatalf("expected model marked closed")
	}

	released := NewModel(nil, Options{NoColor: true})
	if _, cmd := released.Update(closedMsg{}); cmd == nil {
		t.Fatalf("expected quit command without hold")
	}
	if _, cmd := held.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("expected q to quit")
	}
}

// TestControllerDropsEventsAfterClose verifies sends after Close are safe.
func TestControllerDropsEventsAfterClose(t *testing.T) {
	c := &Controller{events: make(chan Event, 1), done: make(chan struct{})}
	c.OnRunStart(1, analysis.Descriptor{})
	c.OnStep(analysis.StepEvent{Seq: 1, Step: analysis.StepStructure})
	c.Close()
	c.Close()
	c.OnRunEnd(1, nil, errors.New("late"))
	if got := len(c.events); got != 1 {
		t.Fatalf("expected one buffered event, got %d", got)
	}
}
