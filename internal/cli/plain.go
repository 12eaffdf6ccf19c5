package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"essaylens/internal/analysis"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// palette colors plain output when the writer is a color terminal.
type palette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) palette {
	if noColor {
		return palette{}
	}
	return palette{enabled: shouldUseStyling(writer)}
}

func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func (p palette) wrap(code, text string) string {
	if !p.enabled {
		return text
	}
	return code + text + ansiReset
}

func (p palette) bucket(bucket analysis.Bucket) string {
	switch bucket {
	case analysis.BucketMet:
		return p.wrap(ansiGreen, string(bucket))
	case analysis.BucketPartial:
		return p.wrap(ansiYellow, string(bucket))
	case analysis.BucketMissing:
		return p.wrap(ansiRed, string(bucket))
	default:
		return string(bucket)
	}
}

// plainObserver prints run progress lines for non-TTY output.
type plainObserver struct {
	mu      sync.Mutex
	w       io.Writer
	palette palette
}

var _ analysis.Observer = (*plainObserver)(nil)

func newPlainObserver(w io.Writer, noColor bool) *plainObserver {
	return &plainObserver{w: w, palette: paletteFor(w, noColor)}
}

func (o *plainObserver) printf(code, format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, "%s %s\n", o.palette.wrap(ansiDim, "[essaylens]"), o.palette.wrap(code, fmt.Sprintf(format, args...)))
}

func (o *plainObserver) OnRunStart(seq uint64, input analysis.Descriptor) {
	o.printf(ansiBold+ansiBlue, "analyzing %s (%s, %s flow, run #%d)", input.EssaySource, input.Mode, input.RubricFlow, seq)
}

func (o *plainObserver) OnStep(event analysis.StepEvent) {
	switch event.Status {
	case analysis.StepStarted:
		o.printf("", "%s ...", event.Step)
	case analysis.StepFinished:
		o.printf("", "%s done in %s", event.Step, event.Duration.Round(time.Millisecond))
	case analysis.StepFailed:
		o.printf(ansiBold+ansiRed, "%s failed: %s", event.Step, event.Error)
	}
}

func (o *plainObserver) OnRunEnd(seq uint64, result *analysis.Result, err error) {
	if err != nil {
		o.printf(ansiBold+ansiRed, "run #%d failed: %v", seq, err)
		return
	}
	o.printf(ansiBold+ansiGreen, "run %s finished", result.RunID)
}

// printSummary writes the result summary and criteria table.
func printSummary(w io.Writer, result analysis.Result, noColor bool) {
	p := paletteFor(w, noColor)
	s := result.Summary
	fmt.Fprintf(w, "Run %s\n", result.RunID)
	fmt.Fprintf(w, "Score %s/%s (%.1f%%)  met %d  partial %d  missing %d\n",
		trimFloat(s.Score), trimFloat(s.MaxScore), s.Percent(), s.Met, s.Partial, s.Missing)
	for _, coverage := range result.Coverage {
		fmt.Fprintf(w, "Grade %s: %d/%d met\n", coverage.Grade, coverage.Met, coverage.Total)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CRITERION\tSTATUS\tSCORE\tSECTION\tSUGGESTION")
	for _, match := range result.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%s\n",
			oneLine(match.Criterion, 48),
			p.bucket(match.Bucket),
			trimFloat(match.Score), trimFloat(match.MaxScore),
			oneLine(match.Section, 20),
			oneLine(match.Suggestion, 60),
		)
	}
	_ = tw.Flush()
}

func trimFloat(value float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}

func oneLine(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
