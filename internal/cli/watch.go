package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"essaylens/internal/analysis"
	"essaylens/internal/history"
	"essaylens/internal/ui/live"
	"essaylens/internal/watch"
)

// watchFiles is a test seam for the file watcher.
var watchFiles = watch.Watch

func newWatchCommand(a *app) *cobra.Command {
	var (
		in       inputFlags
		opts     analysisFlags
		out      outputFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch --essay <file> --rubric <file>",
		Short: "Re-analyze whenever the essay or rubric file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), a, in, opts, out, debounce)
		},
	}
	cmd.Flags().StringVarP(&in.essay, "essay", "e", "", "Essay file to watch")
	cmd.Flags().StringVarP(&in.rubric, "rubric", "r", "", "Rubric file to watch")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
	opts.register(cmd)
	out.register(cmd)
	return cmd
}

func runWatch(ctx context.Context, a *app, in inputFlags, flags analysisFlags, out outputFlags, debounce time.Duration) error {
	if in.essay == "" || in.rubric == "" || in.essay == "-" || in.rubric == "-" {
		return usageErrorf("watch needs --essay and --rubric file paths")
	}
	if err := a.load(); err != nil {
		return err
	}
	opts, err := a.options(flags, in.essay)
	if err != nil {
		return err
	}
	decision, err := resolveUIMode(a.cfg.UI.Mode, a.verbose, a.stdout)
	if err != nil {
		return usageErrorf("%v", err)
	}
	if decision.warning != "" {
		fmt.Fprintln(a.stderr, decision.warning)
	}
	if err := a.initLogger(decision.useLive); err != nil {
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

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ui liveUI
	var observer analysis.Observer
	if decision.useLive {
		ui = startLive(a.stdout, live.Options{NoColor: a.cfg.UI.NoColor})
		observer = ui
		go func() {
			select {
			case <-ui.Done():
				cancel()
			case <-watchCtx.Done():
			}
		}()
	} else {
		observer = newPlainObserver(a.stderr, a.cfg.UI.NoColor)
	}

	session := analysis.NewSession(newService(a.cfg, a.logger), opts,
		analysis.WithLogger(a.logger),
		analysis.WithSuggester(suggester),
		analysis.WithServiceURL(a.cfg.Service.BaseURL),
		analysis.WithObserver(observer),
	)
	rerun := func(runCtx context.Context, changed string) {
		if changed != "" {
			a.logger.Info("re-running analysis", zap.String("changed", changed))
		}
		a.runWatched(runCtx, session, store, in, opts, out, ui == nil)
	}

	err = watchFiles(watchCtx, []string{in.essay, in.rubric}, debounce, rerun,
		watch.WithLogger(a.logger), watch.WithInitialRun())
	if ui != nil {
		ui.Close()
		_ = ui.Wait()
	}
	return err
}

// runWatched performs one analysis for the watch loop. Errors are reported
// through the observer and never stop watching.
func (a *app) runWatched(ctx context.Context, session *analysis.Session, store *history.Store, in inputFlags, opts analysis.Options, out outputFlags, plain bool) {
	input, err := loadInput(in, opts)
	if err != nil {
		a.logger.Warn("load input", zap.Error(err))
		if plain {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return
	}
	result, err := session.Run(ctx, input)
	if errors.Is(err, analysis.ErrSuperseded) || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		return
	}
	if err := a.storeOutcome(ctx, store, result, out); err != nil {
		a.logger.Warn("persist watched result", zap.Error(err))
		if plain {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	if plain {
		printSummary(a.stdout, result, a.cfg.UI.NoColor)
		fmt.Fprintln(a.stdout)
	}
}
