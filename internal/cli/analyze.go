package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"essaylens/internal/analysis"
	"essaylens/internal/report"
	"essaylens/internal/ui/live"
)

// liveUI is the part of live.Controller the CLI drives.
type liveUI interface {
	analysis.Observer
	Close()
	Done() <-chan struct{}
	Wait() error
}

// startLive is a test seam for the Bubble Tea controller.
var startLive = func(stdout io.Writer, opts live.Options) liveUI {
	return live.Start(stdout, opts)
}

// outputFlags control what happens to a finished result.
type outputFlags struct {
	formats   []string
	outputDir string
	noWrite   bool
	history   bool
	asJSON    bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.formats, "format", nil, "Report formats: json, html, markdown (default from config)")
	cmd.Flags().StringVar(&o.outputDir, "output-dir", "", "Results directory (default from config)")
	cmd.Flags().BoolVar(&o.noWrite, "no-write", false, "Do not write result files")
	cmd.Flags().BoolVar(&o.history, "history", false, "Record the run in the history database")
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "Essay mode: text|pdf (default: pdf for .pdf essays)")
	cmd.Flags().StringVar(&f.flow, "flow", "", "Rubric flow: list|id (default from config)")
	cmd.Flags().StringVar(&f.rubricFormat, "rubric-format", "", "Rubric parser: lines|points")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Met policy: full|any (default from config)")
}

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		in   inputFlags
		opts analysisFlags
		out  outputFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze --essay <file|-> --rubric <file|->",
		Short: "Score an essay against a rubric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), a, in, opts, out)
		},
	}
	cmd.Flags().StringVarP(&in.essay, "essay", "e", "", "Essay file (.txt, .md or .pdf), or - for stdin")
	cmd.Flags().StringVarP(&in.rubric, "rubric", "r", "", "Rubric file (.txt or, with --flow id, .pdf), or - for stdin")
	cmd.Flags().StringVar(&in.essayText, "essay-text", "", "Essay text given inline")
	cmd.Flags().StringVar(&in.rubricText, "rubric-text", "", "Rubric text given inline")
	cmd.Flags().BoolVar(&out.asJSON, "json", false, "Print the result as JSON")
	opts.register(cmd)
	out.register(cmd)
	return cmd
}

func runAnalyze(ctx context.Context, a *app, in inputFlags, flags analysisFlags, out outputFlags) error {
	if err := a.load(); err != nil {
		return err
	}
	opts, err := a.options(flags, in.essay)
	if err != nil {
		return err
	}
	input, err := loadInput(in, opts)
	if err != nil {
		return err
	}
	if err := input.Validate(opts); err != nil {
		return err
	}

	decision, err := resolveUIMode(a.cfg.UI.Mode, a.verbose || out.asJSON, a.stdout)
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

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ui liveUI
	var observer analysis.Observer
	if decision.useLive {
		ui = startLive(a.stdout, live.Options{NoColor: a.cfg.UI.NoColor, Hold: true})
		observer = ui
		go func() {
			select {
			case <-ui.Done():
				cancel()
			case <-runCtx.Done():
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
	result, runErr := session.Run(runCtx, input)
	if ui != nil {
		ui.Close()
		if err := ui.Wait(); err != nil {
			a.logger.Warn("live ui exited with error", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	written, err := a.persist(ctx, result, out)
	if err != nil {
		return err
	}
	if out.asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if ui == nil {
		printSummary(a.stdout, result, a.cfg.UI.NoColor)
	}
	for _, file := range written.Files {
		fmt.Fprintf(a.stdout, "Wrote %s\n", file)
	}
	return nil
}

// persist writes report files and records history as configured.
func (a *app) persist(ctx context.Context, result analysis.Result, out outputFlags) (report.Written, error) {
	written, err := a.writeOutputs(ctx, result, out)
	if err != nil {
		return report.Written{}, err
	}
	store, err := a.openHistory(ctx, out.history)
	if err != nil {
		return written, fmt.Errorf("open history: %w", err)
	}
	if store != nil {
		defer store.Close()
		if err := store.Record(ctx, result); err != nil {
			return written, err
		}
	}
	return written, nil
}

// writeOutputs writes the report files unless --no-write was given.
func (a *app) writeOutputs(ctx context.Context, result analysis.Result, out outputFlags) (report.Written, error) {
	if out.noWrite {
		return report.Written{}, nil
	}
	dir := a.cfg.Output.Dir
	if out.outputDir != "" {
		dir = out.outputDir
	}
	formats := a.cfg.Output.Formats
	if len(out.formats) > 0 {
		formats = out.formats
	}
	written, err := report.WriteOutputs(ctx, result, dir, formats)
	if err != nil {
		return report.Written{}, fmt.Errorf("write outputs: %w", err)
	}
	return written, nil
}
