package analysis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"essaylens/internal/rubric"
	"essaylens/internal/scoring"
)

// ErrSuperseded is returned by Run when a newer run or a Reset replaced it.
var ErrSuperseded = errors.New("analysis superseded by a newer run")

// Session owns analysis state and executes runs against a Service.
//
// Starting a run cancels the previous one. Requests within a run are
// sequential.
type Session struct {
	service    Service
	opts       Options
	suggester  Suggester
	logger     *zap.Logger
	now        func() time.Time
	entropy    io.Reader
	serviceURL string

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	cancelSeq uint64
	observers []Observer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSuggester sets the suggester for unmet criteria. The default is
// Placeholder.
func WithSuggester(suggester Suggester) SessionOption {
	return func(s *Session) {
		if suggester != nil {
			s.suggester = suggester
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEntropy overrides the random source for run ids.
func WithEntropy(r io.Reader) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.entropy = r
		}
	}
}

// WithObserver registers an observer.
func WithObserver(observer Observer) SessionOption {
	return func(s *Session) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithServiceURL records the service root in result descriptors.
func WithServiceURL(url string) SessionOption {
	return func(s *Session) {
		s.serviceURL = url
	}
}

// NewSession constructs an idle session.
func NewSession(service Service, opts Options, options ...SessionOption) *Session {
	s := &Session{
		service:   service,
		opts:      opts.WithDefaults(),
		suggester: Placeholder{},
		logger:    zap.NewNop(),
		now:       time.Now,
		entropy:   rand.Reader,
		state:     State{Phase: PhaseIdle},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Options returns the session options with defaults applied.
func (s *Session) Options() Options {
	return s.opts
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies an input action such as SetEssayText. Reset also cancels
// the in-flight run.
func (s *Session) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := action.(Reset); ok && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = Reduce(s.state, action)
	return s.state
}

// Cancel cancels the in-flight run, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Submit runs an analysis over the input currently held in state.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	return s.Run(ctx, s.State().Input())
}

// Run executes one analysis. A run replaced by a later Run or Reset returns
// ErrSuperseded and its outcome never reaches the state.
func (s *Session) Run(ctx context.Context, input Input) (Result, error) {
	if err := s.opts.Validate(); err != nil {
		return Result{}, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.state = Reduce(s.state, Submit{})
	seq := s.state.Seq
	s.cancel = cancel
	s.cancelSeq = seq
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.cancelSeq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	descriptor := s.descriptor(input)
	for _, observer := range observers {
		observer.OnRunStart(seq, descriptor)
	}

	var (
		result Result
		err    error
	)
	if err = input.Validate(s.opts); err == nil {
		result, err = s.execute(runCtx, seq, input, descriptor, observers)
	}
	return s.finish(seq, result, err, observers)
}

func (s *Session) finish(seq uint64, result Result, runErr error, observers []Observer) (Result, error) {
	s.mu.Lock()
	if !s.state.current(seq) {
		s.mu.Unlock()
		s.logger.Debug("dropping superseded run", zap.Uint64("seq", seq))
		return Result{}, ErrSuperseded
	}
	if runErr != nil {
		s.state = Reduce(s.state, Fail{Seq: seq, Err: runErr})
	} else {
		s.state = Reduce(s.state, Succeed{Seq: seq, Result: result})
	}
	s.mu.Unlock()

	if runErr != nil {
		s.logger.Info("analysis failed", zap.Uint64("seq", seq), zap.Error(runErr))
		for _, observer := range observers {
			observer.OnRunEnd(seq, nil, runErr)
		}
		return Result{}, runErr
	}
	s.logger.Info("analysis finished",
		zap.String("run_id", result.RunID),
		zap.Int("met", result.Summary.Met),
		zap.Int("partial", result.Summary.Partial),
		zap.Int("missing", result.Summary.Missing),
		zap.Duration("elapsed", result.Duration()),
	)
	for _, observer := range observers {
		observer.OnRunEnd(seq, &result, nil)
	}
	return result, nil
}

func (s *Session) descriptor(input Input) Descriptor {
	essaySource := input.EssaySource
	if essaySource == "" {
		essaySource = "inline"
		if input.EssayFile != nil && s.opts.Mode == ModePDF {
			essaySource = input.EssayFile.Name
		}
	}
	rubricSource := input.RubricSource
	if rubricSource == "" {
		rubricSource = "inline"
		if input.RubricFile != nil && s.opts.RubricFlow == FlowID {
			rubricSource = input.RubricFile.Name
		}
	}
	return Descriptor{
		EssaySource:  essaySource,
		RubricSource: rubricSource,
		Mode:         s.opts.Mode,
		RubricFlow:   s.opts.RubricFlow,
		RubricFormat: s.opts.RubricFormat,
		Policy:       s.opts.Policy,
		ServiceURL:   s.serviceURL,
	}
}

// execute runs the request plan: structure, optional rubric registration,
// then scoring.
func (s *Session) execute(ctx context.Context, seq uint64, input Input, descriptor Descriptor, observers []Observer) (Result, error) {
	opts := s.opts
	started := s.now()
	parsed := input.Rubric(opts)
	pdf := opts.Mode == ModePDF

	step := func(name Step, fn func() error) error {
		s.mu.Lock()
		s.state = Reduce(s.state, Progress{Seq: seq, Step: name})
		s.mu.Unlock()
		emit(observers, StepEvent{Seq: seq, Step: name, Status: StepStarted, EmittedAt: s.now()})
		stepStart := time.Now()
		err := fn()
		event := StepEvent{Seq: seq, Step: name, Status: StepFinished, Duration: time.Since(stepStart), EmittedAt: s.now()}
		if err != nil {
			event.Status = StepFailed
			event.Error = err.Error()
		}
		emit(observers, event)
		s.logger.Debug("analysis step",
			zap.Uint64("seq", seq),
			zap.String("step", string(name)),
			zap.String("status", string(event.Status)),
			zap.Duration("elapsed", event.Duration))
		return err
	}

	var sections []scoring.Section
	if err := step(StepStructure, func() error {
		var err error
		if pdf {
			sections, err = s.service.StructurePDF(ctx, *input.EssayFile)
		} else {
			sections, err = s.service.Structure(ctx, input.EssayText)
		}
		return err
	}); err != nil {
		return Result{}, err
	}

	var matches []scoring.Match
	switch opts.RubricFlow {
	case FlowID:
		var rubricID string
		if err := step(StepRegisterRubric, func() error {
			var err error
			if input.RubricFile != nil && len(input.RubricFile.Data) > 0 {
				rubricID, err = s.service.RegisterRubricPDF(ctx, *input.RubricFile)
			} else {
				rubricID, err = s.service.RegisterRubric(ctx, input.RubricText)
			}
			return err
		}); err != nil {
			return Result{}, err
		}
		descriptor.RubricID = rubricID
		if err := step(StepScore, func() error {
			var err error
			if pdf {
				matches, err = s.service.ScoreEssayPDF(ctx, *input.EssayFile, rubricID)
			} else {
				matches, err = s.service.ScoreEssay(ctx, input.EssayText, rubricID)
			}
			return err
		}); err != nil {
			return Result{}, err
		}
	default:
		criteria := parsed.Criteria()
		if err := step(StepScore, func() error {
			var err error
			if pdf {
				matches, err = s.service.AnalyzePDF(ctx, *input.EssayFile, criteria)
			} else {
				matches, err = s.service.Analyze(ctx, input.EssayText, criteria)
			}
			return err
		}); err != nil {
			return Result{}, err
		}
	}
	return s.buildResult(ctx, started, descriptor, input, parsed, sections, matches)
}

func (s *Session) buildResult(ctx context.Context, started time.Time, descriptor Descriptor, input Input, parsed rubric.Parsed, sections []scoring.Section, matches []scoring.Match) (Result, error) {
	runID, err := NewRunIDWithRand(started, s.entropy)
	if err != nil {
		return Result{}, fmt.Errorf("run id: %w", err)
	}
	if sections == nil {
		sections = []scoring.Section{}
	}
	result := Result{
		RunID:     runID,
		StartedAt: started.UTC(),
		Input:     descriptor,
		EssayText: input.EssayText,
		Rubric:    parsed,
		Sections:  sections,
	}
	if descriptor.Mode == ModePDF {
		result.EssayText = ""
	}
	// The id flow scores against the service's own parse of the rubric.
	var classified []ClassifiedMatch
	if descriptor.RubricFlow == FlowID {
		classified = ClassifyMatches(parsed, matches, s.opts.Policy)
	} else {
		classified = ClassifyAll(parsed, matches, s.opts.Policy)
	}
	ResolveSuggestions(ctx, s.suggester, result.Essay(), classified, s.logger)
	result.Matches = classified
	result.Summary = Summarize(classified)
	result.Coverage = Coverage(parsed, classified)
	result.FinishedAt = s.now().UTC()
	return result, nil
}

func emit(observers []Observer, event StepEvent) {
	for _, observer := range observers {
		observer.OnStep(event)
	}
}
