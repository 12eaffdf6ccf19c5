// Package batch analyzes many essays against one rubric with bounded
// concurrency.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"essaylens/internal/analysis"
	"essaylens/internal/scoring"
)

// DefaultConcurrency bounds in-flight analyses when Options leave it unset.
const DefaultConcurrency = 4

// Essay is one batch entry. Text is used in text mode, File in pdf mode.
type Essay struct {
	Source string
	Text   string
	File   *scoring.Upload
}

// Rubric is shared by every essay in a batch.
type Rubric struct {
	Source string
	Text   string
	File   *scoring.Upload
}

// Outcome is the result of one essay. Exactly one of Result and Err is set.
type Outcome struct {
	Index  int
	Source string
	Result *analysis.Result
	Err    error
}

// Options configure a batch.
type Options struct {
	Concurrency int
	Analysis    analysis.Options
	Suggester   analysis.Suggester
	ServiceURL  string
	Logger      *zap.Logger
	Now         func() time.Time
	Entropy     io.Reader
	// OnOutcome is called once per essay as it finishes. Calls are
	// serialized.
	OnOutcome func(Outcome)
}

// Report collects batch outcomes in input order.
type Report struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that ended in an error.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			out = append(out, outcome)
		}
	}
	return out
}

// Succeeded returns the number of essays analyzed successfully.
func (r Report) Succeeded() int {
	return len(r.Outcomes) - len(r.Failed())
}

// Err joins every per-essay error, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, outcome := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", outcome.Source, outcome.Err))
	}
	return errors.Join(errs...)
}

// Run analyzes every essay. A failing essay does not stop the others; the
// returned error is non-nil only when ctx ends before all essays finish.
func Run(ctx context.Context, service analysis.Service, essays []Essay, rubric Rubric, opts Options) (Report, error) {
	if service == nil {
		return Report{}, errors.New("batch: service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	report := Report{Outcomes: make([]Outcome, len(essays))}
	done := make([]bool, len(essays))
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, essay := range essays {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			outcome := Outcome{Index: i, Source: essay.Source}
			session := analysis.NewSession(service, opts.Analysis, sessionOptions(opts, logger)...)
			result, err := session.Run(groupCtx, analysis.Input{
				EssayText:    essay.Text,
				EssayFile:    essay.File,
				EssaySource:  essay.Source,
				RubricText:   rubric.Text,
				RubricFile:   rubric.File,
				RubricSource: rubric.Source,
			})
			if err != nil {
				outcome.Err = err
				logger.Warn("batch essay failed", zap.String("essay", essay.Source), zap.Error(err))
			} else {
				outcome.Result = &result
			}

			mu.Lock()
			report.Outcomes[i] = outcome
			done[i] = true
			if opts.OnOutcome != nil {
				opts.OnOutcome(outcome)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	// Essays never started because ctx ended are reported as cancelled.
	for i := range report.Outcomes {
		if !done[i] {
			report.Outcomes[i] = Outcome{Index: i, Source: essays[i].Source, Err: context.Cause(ctx)}
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func sessionOptions(opts Options, logger *zap.Logger) []analysis.SessionOption {
	options := []analysis.SessionOption{
		analysis.WithLogger(logger),
		analysis.WithServiceURL(opts.ServiceURL),
	}
	if opts.Suggester != nil {
		options = append(options, analysis.WithSuggester(opts.Suggester))
	}
	if opts.Now != nil {
		options = append(options, analysis.WithClock(opts.Now))
	}
	if opts.Entropy != nil {
		options = append(options, analysis.WithEntropy(opts.Entropy))
	}
	return options
}

// Collect expands files, directories and glob patterns into essays, sorted
// by path. Directories contribute files with the given extensions.
func Collect(args []string, mode analysis.Mode) ([]Essay, error) {
	exts := []string{".txt", ".md"}
	if mode == analysis.ModePDF {
		exts = []string{".pdf"}
	}
	seen := map[string]struct{}{}
	var paths []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("batch: bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("batch: no files match %q", arg)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("batch: %w", err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}
			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("batch: read dir: %w", err)
			}
			for _, entry := range entries {
				if entry.IsDir() || !hasExt(entry.Name(), exts) {
					continue
				}
				add(filepath.Join(match, entry.Name()))
			}
		}
	}
	sort.Strings(paths)

	essays := make([]Essay, 0, len(paths))
	for _, path := range paths {
		if mode == analysis.ModePDF {
			upload, err := scoring.LoadUpload(path)
			if err != nil {
				return nil, err
			}
			essays = append(essays, Essay{Source: path, File: &upload})
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("batch: read essay: %w", err)
		}
		essays = append(essays, Essay{Source: path, Text: string(data)})
	}
	return essays, nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}
