// Package cli implements the essaylens command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"essaylens/internal/analysis"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usageErrorf reports bad arguments with ExitUsage.
func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// stdin is the reader used for "-" arguments and init prompts.
var stdin io.Reader = os.Stdin

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	if len(args) == 0 {
		fmt.Fprint(stdout, root.UsageString())
		return ExitUsage
	}
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	executed, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}
	code := exitCodeFor(err)
	if isCobraUsageError(err) {
		if strings.HasPrefix(err.Error(), "unknown command") {
			fmt.Fprintf(stderr, "Unknown command: %s\n\n", strings.TrimPrefix(err.Error(), "unknown command "))
		} else {
			fmt.Fprintf(stderr, "Error: %v\n\n", err)
		}
		if executed == nil {
			executed = root
		}
		fmt.Fprint(stderr, executed.UsageString())
		return code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return code
}

// exitCodeFor maps command errors to exit codes.
func exitCodeFor(err error) int {
	var exitErr *exitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.code
	case errors.Is(err, analysis.ErrNoEssay), errors.Is(err, analysis.ErrNoCriteria):
		return ExitUsage
	case isCobraUsageError(err):
		return ExitUsage
	default:
		return ExitError
	}
}

// isCobraUsageError detects argument and flag errors raised by cobra.
func isCobraUsageError(err error) bool {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return false
	}
	msg := err.Error()
	for _, prefix := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"accepts ",
		"requires at least",
		"requires at most",
		"required flag",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "essaylens",
		Short: "Analyze essays against grading rubrics",
		Long: `essaylens parses grading rubrics, sends essays to a scoring service and
renders per-criterion scores, highlighted snippets and suggestions.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to .essaylens/config.yml (default: search upward)")
	flags.StringVar(&a.serviceURL, "service-url", "", "Scoring service base URL (overrides config)")
	flags.StringVar(&a.uiMode, "ui", "", "UI mode: auto|live|plain")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging and plain output")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	root.AddCommand(
		newInitCommand(a),
		newValidateCommand(a),
		newRubricCommand(a),
		newStructureCommand(a),
		newAnalyzeCommand(a),
		newBatchCommand(a),
		newWatchCommand(a),
		newReportCommand(a),
		newServeCommand(a),
		newHistoryCommand(a),
	)
	return root
}
