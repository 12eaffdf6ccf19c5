package analysis

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"essaylens/internal/scoring"
	"essaylens/internal/testutil"
)

// recordingObserver collects session events.
type recordingObserver struct {
	mu     sync.Mutex
	starts []uint64
	steps  []StepEvent
	ends   []error
}

func (o *recordingObserver) OnRunStart(seq uint64, _ Descriptor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, seq)
}

func (o *recordingObserver) OnStep(event StepEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, event)
}

func (o *recordingObserver) OnRunEnd(_ uint64, _ *Result, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ends = append(o.ends, err)
}

func newTestSession(t *testing.T, server *testutil.ScoringServer, opts Options, extra ...SessionOption) *Session {
	t.Helper()
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	clock.Step(250 * time.Millisecond)
	options := append([]SessionOption{
		WithClock(clock.Now),
		WithEntropy(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64))),
		WithServiceURL(server.BaseURL),
	}, extra...)
	return NewSession(scoring.New(server.BaseURL), opts, options...)
}

// TestSessionTextListFlow verifies structure then analyze with parsed criteria.
func TestSessionTextListFlow(t *testing.T) {
	server := testutil.StartScoringServer(t)
	server.SetSections([]scoring.Section{{Name: "Introduction", Text: "I argue."}})
	observer := &recordingObserver{}
	session := newTestSession(t, server, Options{}, WithObserver(observer))

	result, err := session.Run(testutil.Context(t, 0), Input{
		EssayText:  "I argue.",
		RubricText: "A)\n- uses evidence: explanation\nB.\nclear thesis",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{scoring.PathStructure, scoring.PathAnalyze}, server.Paths()); diff != "" {
		t.Fatalf("request plan mismatch (-want +got):\n%s", diff)
	}
	if got := server.Requests()[1].JSON["rubric"]; !cmp.Equal(got, []any{"uses evidence", "clear thesis"}) {
		t.Fatalf("unexpected criteria %v", got)
	}
	if result.RunID != "20260301T090000Z-abababababab" {
		t.Fatalf("unexpected run id %q", result.RunID)
	}
	if result.Duration() <= 0 {
		t.Fatalf("expected a positive run duration, got %v", result.Duration())
	}
	if result.Summary.Met != 2 || len(result.Coverage) != 2 {
		t.Fatalf("unexpected summary %+v coverage %+v", result.Summary, result.Coverage)
	}
	if result.Input.ServiceURL != server.BaseURL || result.Input.EssaySource != "inline" {
		t.Fatalf("unexpected descriptor %+v", result.Input)
	}
	state := session.State()
	if state.Phase != PhaseSuccess || state.Result == nil || state.Result.RunID != result.RunID {
		t.Fatalf("unexpected state %+v", state)
	}
	if len(observer.starts) != 1 || len(observer.ends) != 1 || observer.ends[0] != nil {
		t.Fatalf("unexpected observer lifecycle %+v", observer)
	}
	if len(observer.steps) != 4 || observer.steps[0].Step != StepStructure || observer.steps[3].Status != StepFinished {
		t.Fatalf("unexpected step events %+v", observer.steps)
	}
}

// TestSessionIDFlow verifies the rubric registration plan.
func TestSessionIDFlow(t *testing.T) {
	server := testutil.StartScoringServer(t)
	server.SetRubricID("r-9")
	server.SetMatches([]scoring.Match{{Criterion: "thesis", Score: 1, MaxScore: 2}})
	session := newTestSession(t, server, Options{RubricFlow: FlowID})

	result, err := session.Run(testutil.Context(t, 0), Input{EssayText: "essay", RubricText: "thesis\nevidence"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{scoring.PathStructure, scoring.PathParseRubric, scoring.PathScoreEssay}
	if diff := cmp.Diff(want, server.Paths()); diff != "" {
		t.Fatalf("request plan mismatch (-want +got):\n%s", diff)
	}
	if result.Input.RubricID != "r-9" {
		t.Fatalf("expected rubric id recorded, got %q", result.Input.RubricID)
	}
	if result.Matches[0].Bucket != BucketPartial || result.Matches[0].Suggestion == "" {
		t.Fatalf("expected partial match with suggestion, got %+v", result.Matches[0])
	}
	if len(result.Matches) != 1 || result.Summary.Missing != 0 {
		t.Fatalf("expected only service-scored criteria, got %+v", result.Matches)
	}
}

// TestSessionPDFFlows verifies multipart endpoints are used in pdf mode.
func TestSessionPDFFlows(t *testing.T) {
	essay := &scoring.Upload{Name: "essay.pdf", Data: []byte("%PDF essay")}
	rubricFile := &scoring.Upload{Name: "rubric.pdf", Data: []byte("%PDF rubric")}
	cases := []struct {
		name  string
		opts  Options
		input Input
		want  []string
	}{
		{
			name:  "list",
			opts:  Options{Mode: ModePDF},
			input: Input{EssayFile: essay, RubricText: "thesis"},
			want:  []string{scoring.PathStructurePDF, scoring.PathAnalyzePDF},
		},
		{
			name:  "id",
			opts:  Options{Mode: ModePDF, RubricFlow: FlowID},
			input: Input{EssayFile: essay, RubricFile: rubricFile},
			want:  []string{scoring.PathStructurePDF, scoring.PathParseRubricPDF, scoring.PathScoreEssayPDF},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := testutil.StartScoringServer(t)
			session := newTestSession(t, server, tc.opts)
			result, err := session.Run(testutil.Context(t, 0), tc.input)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if diff := cmp.Diff(tc.want, server.Paths()); diff != "" {
				t.Fatalf("request plan mismatch (-want +got):\n%s", diff)
			}
			if result.Input.EssaySource != "essay.pdf" || result.EssayText != "" {
				t.Fatalf("unexpected pdf descriptor %+v", result.Input)
			}
		})
	}
}

// TestSessionValidationSendsNothing verifies missing input fails before any request.
func TestSessionValidationSendsNothing(t *testing.T) {
	server := testutil.StartScoringServer(t)
	session := newTestSession(t, server, Options{})

	_, err := session.Run(testutil.Context(t, 0), Input{EssayText: "essay"})
	if !errors.Is(err, ErrNoCriteria) {
		t.Fatalf("expected ErrNoCriteria, got %v", err)
	}
	if len(server.Requests()) != 0 {
		t.Fatalf("expected no requests, got %v", server.Paths())
	}
	if state := session.State(); state.Phase != PhaseFailure || !errors.Is(state.Err, ErrNoCriteria) {
		t.Fatalf("unexpected state %+v", state)
	}
}

// TestSessionServiceFailure verifies HTTP errors stop the plan and reach the state.
func TestSessionServiceFailure(t *testing.T) {
	server := testutil.StartScoringServer(t)
	server.Fail(scoring.PathStructure, http.StatusInternalServerError, "Internal server error")
	session := newTestSession(t, server, Options{})

	_, err := session.Run(testutil.Context(t, 0), Input{EssayText: "essay", RubricText: "thesis"})
	var httpErr *scoring.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if diff := cmp.Diff([]string{scoring.PathStructure}, server.Paths()); diff != "" {
		t.Fatalf("plan should stop after failure (-want +got):\n%s", diff)
	}
	state := session.State()
	if state.Phase != PhaseFailure || state.Step != StepStructure {
		t.Fatalf("unexpected state %+v", state)
	}
}

// blockingService is an in-memory Service whose Structure waits on gate.
type blockingService struct {
	gate    chan struct{}
	entered chan struct{}
}

func (s *blockingService) Structure(ctx context.Context, text string) ([]scoring.Section, error) {
	if text == "slow" {
		s.entered <- struct{}{}
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []scoring.Section{{Name: "Body", Text: text}}, nil
}

func (s *blockingService) Analyze(_ context.Context, _ string, criteria []string) ([]scoring.Match, error) {
	matches := make([]scoring.Match, 0, len(criteria))
	for _, criterion := range criteria {
		matches = append(matches, scoring.Match{Criterion: criterion, Score: 1, MaxScore: 1})
	}
	return matches, nil
}

func (s *blockingService) RegisterRubric(context.Context, string) (string, error) {
	return "id", nil
}

func (s *blockingService) ScoreEssay(context.Context, string, string) ([]scoring.Match, error) {
	return nil, nil
}

func (s *blockingService) StructurePDF(ctx context.Context, _ scoring.Upload) ([]scoring.Section, error) {
	return s.Structure(ctx, "")
}

func (s *blockingService) AnalyzePDF(ctx context.Context, _ scoring.Upload, criteria []string) ([]scoring.Match, error) {
	return s.Analyze(ctx, "", criteria)
}

func (s *blockingService) RegisterRubricPDF(context.Context, scoring.Upload) (string, error) {
	return "id", nil
}

func (s *blockingService) ScoreEssayPDF(context.Context, scoring.Upload, string) ([]scoring.Match, error) {
	return nil, nil
}

// TestSessionNewRunSupersedesOld verifies a second run cancels the first and wins.
func TestSessionNewRunSupersedesOld(t *testing.T) {
	defer goleak.VerifyNone(t)

	service := &blockingService{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	session := NewSession(service, Options{})
	ctx := testutil.Context(t, 0)

	firstErr := make(chan error, 1)
	go func() {
		_, err := session.Run(ctx, Input{EssayText: "slow", RubricText: "thesis"})
		firstErr <- err
	}()
	<-service.entered

	result, err := session.Run(ctx, Input{EssayText: "fast", RubricText: "thesis"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first run superseded, got %v", err)
	}
	state := session.State()
	if state.Phase != PhaseSuccess || state.Seq != 2 || state.Result.RunID != result.RunID {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.Result.Sections[0].Text != "fast" {
		t.Fatalf("state holds the wrong run: %+v", state.Result.Sections)
	}
}

// TestSessionResetCancelsRun verifies Reset aborts the in-flight run.
func TestSessionResetCancelsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	service := &blockingService{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	session := NewSession(service, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := session.Run(context.Background(), Input{EssayText: "slow", RubricText: "thesis"})
		done <- err
	}()
	<-service.entered
	session.Dispatch(Reset{})

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if state := session.State(); state.Phase != PhaseIdle {
		t.Fatalf("expected idle after reset, got %s", state.Phase)
	}
}

// TestSessionSubmitUsesState verifies Submit reads inputs dispatched earlier.
func TestSessionSubmitUsesState(t *testing.T) {
	service := &blockingService{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	session := NewSession(service, Options{})
	session.Dispatch(SetEssayText{Text: "essay"})
	session.Dispatch(SetRubricText{Text: "thesis\nevidence"})

	result, err := session.Submit(testutil.Context(t, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Summary.Total != 2 {
		t.Fatalf("expected two criteria, got %+v", result.Summary)
	}
}
