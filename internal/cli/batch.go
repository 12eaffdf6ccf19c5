package cli

import (
	"context"
	"fmt"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"essaylens/internal/analysis"
	"essaylens/internal/batch"
	"essaylens/internal/history"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		in          inputFlags
		opts        analysisFlags
		out         outputFlags
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch --rubric <file> <essay|dir|glob>...",
		Short: "Score many essays against one rubric",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), a, args, in, opts, out, concurrency)
		},
	}
	cmd.Flags().StringVarP(&in.rubric, "rubric", "r", "", "Rubric file shared by every essay")
	cmd.Flags().StringVar(&in.rubricText, "rubric-text", "", "Rubric text given inline")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Essays analyzed at once (default from config)")
	opts.register(cmd)
	out.register(cmd)
	return cmd
}

func runBatch(ctx context.Context, a *app, args []string, in inputFlags, flags analysisFlags, out outputFlags, concurrency int) error {
	if err := a.load(); err != nil {
		return err
	}
	if in.rubric == "" && in.rubricText == "" {
		return usageErrorf("--rubric or --rubric-text is required")
	}
	if in.rubric == "-" {
		return usageErrorf("batch reads essays from files; the rubric cannot come from stdin")
	}
	essayHint := ""
	if len(args) == 1 {
		essayHint = args[0]
	}
	opts, err := a.options(flags, essayHint)
	if err != nil {
		return err
	}
	rubricInput, err := loadInput(inputFlags{rubric: in.rubric, rubricText: in.rubricText}, opts)
	if err != nil {
		return err
	}
	essays, err := batch.Collect(args, opts.Mode)
	if err != nil {
		return usageErrorf("%v", err)
	}
	if len(essays) == 0 {
		return usageErrorf("no essays found")
	}
	if concurrency <= 0 {
		concurrency = a.cfg.Batch.Concurrency
	}

	if err := a.initLogger(false); err != nil {
		return err
	}
	defer a.syncLogger()
	suggester, err := a.suggester(ctx)
	if err != nil {
		return err
	}
	store, err := a.openHistory(ctx, out.history)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	progress := newPlainObserver(a.stderr, a.cfg.UI.NoColor)
	var persistMu sync.Mutex
	persistErrs := map[int]error{}
	report, runErr := batch.Run(ctx, newService(a.cfg, a.logger), essays, batch.Rubric{
		Source: rubricInput.RubricSource,
		Text:   rubricInput.RubricText,
		File:   rubricInput.RubricFile,
	}, batch.Options{
		Concurrency: concurrency,
		Analysis:    opts,
		Suggester:   suggester,
		ServiceURL:  a.cfg.Service.BaseURL,
		Logger:      a.logger,
		OnOutcome: func(outcome batch.Outcome) {
			if outcome.Err != nil {
				progress.printf(ansiBold+ansiRed, "%s failed: %v", outcome.Source, outcome.Err)
				return
			}
			progress.printf(ansiGreen, "%s scored %.1f%%", outcome.Source, outcome.Result.Summary.Percent())
			if err := a.storeOutcome(ctx, store, *outcome.Result, out); err != nil {
				a.logger.Warn("persist batch result", zap.String("essay", outcome.Source), zap.Error(err))
				persistMu.Lock()
				persistErrs[outcome.Index] = err
				persistMu.Unlock()
			}
		},
	})

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ESSAY\tRUN\tSCORE\tMET\tPARTIAL\tMISSING\tERROR")
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%s\n", outcome.Source, oneLine(outcome.Err.Error(), 60))
			continue
		}
		s := outcome.Result.Summary
		errText := ""
		if err := persistErrs[outcome.Index]; err != nil {
			errText = oneLine(err.Error(), 60)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%d\t%d\t%d\t%s\n", outcome.Source, outcome.Result.RunID, s.Percent(), s.Met, s.Partial, s.Missing, errText)
	}
	_ = tw.Flush()
	fmt.Fprintf(a.stdout, "%d of %d essays analyzed\n", report.Succeeded(), len(report.Outcomes))

	if runErr != nil {
		return runErr
	}
	if failed := len(report.Failed()); failed > 0 {
		return fmt.Errorf("%d essays failed", failed)
	}
	if len(persistErrs) > 0 {
		return fmt.Errorf("%d results could not be saved", len(persistErrs))
	}
	return nil
}

// storeOutcome writes one batch result and records it in history.
func (a *app) storeOutcome(ctx context.Context, store *history.Store, result analysis.Result, out outputFlags) error {
	if _, err := a.writeOutputs(ctx, result, out); err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	return store.Record(ctx, result)
}
