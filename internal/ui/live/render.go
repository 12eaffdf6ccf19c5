package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"essaylens/internal/analysis"
	"essaylens/internal/report"
)

const barWidth = 24

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "essaylens"
	if state.Runs > 0 {
		line += " | " + describeInput(state.Input)
		line += " | " + string(state.Input.Mode) + "/" + string(state.Input.RubricFlow)
	}
	if state.Busy() && !state.StartedAt.IsZero() {
		line += " | Elapsed: " + formatDuration(now.Sub(state.StartedAt))
	}
	if state.Runs > 1 {
		line += fmt.Sprintf(" | Run #%d", state.Runs)
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSteps renders the request plan with a spinner on the active step.
func renderSteps(state State, spin string, noColor bool) string {
	if len(state.Steps) == 0 {
		if state.Busy() {
			return spin + " preparing request"
		}
		return ""
	}
	parts := make([]string, 0, len(state.Steps))
	for _, row := range state.Steps {
		var marker string
		switch row.Status {
		case analysis.StepStarted:
			marker = spin
		case analysis.StepFinished:
			marker = "✓"
		case analysis.StepFailed:
			marker = "✗"
		}
		text := marker + " " + stepLabel(row.Step)
		if row.Status == analysis.StepFinished {
			text += " " + formatDuration(row.Duration)
		}
		parts = append(parts, stylize(text, noColor, stepColor(row.Status)))
	}
	return strings.Join(parts, "   ")
}

// renderSummary renders the bucket bar chart and overall score.
func renderSummary(result *analysis.Result, noColor bool) string {
	if result == nil {
		return ""
	}
	summary := result.Summary
	lines := make([]string, 0, len(analysis.Buckets)+1)
	lines = append(lines, fmt.Sprintf("Score %s (%.1f%%)  Criteria %d",
		formatScore(summary.Score, summary.MaxScore), summary.Percent(), summary.Total))
	for _, bucket := range analysis.Buckets {
		count := summary.Count(bucket)
		label := fmt.Sprintf("%-8s", strings.ToUpper(string(bucket[:1]))+string(bucket[1:]))
		chart := stylize(bar(count, summary.Total, barWidth), noColor, bucketColor(bucket))
		lines = append(lines, fmt.Sprintf("%s %s %d", label, chart, count))
	}
	for _, coverage := range result.Coverage {
		lines = append(lines, fmt.Sprintf("Grade %s  %d/%d met", coverage.Grade, coverage.Met, coverage.Total))
	}
	return strings.Join(lines, "\n")
}

// renderHighlights renders each essay section with matched snippets marked.
func renderHighlights(result *analysis.Result, width int, noColor bool) string {
	if result == nil || len(result.Sections) == 0 {
		return ""
	}
	if width <= 0 {
		width = 100
	}
	blocks := make([]string, 0, len(result.Sections))
	for _, view := range report.Sections(*result) {
		var body strings.Builder
		for _, segment := range view.Segments {
			body.WriteString(renderSegment(segment, noColor))
		}
		title := view.Section.Name
		if !noColor {
			title = lipgloss.NewStyle().Bold(true).Render(title)
		}
		text := lipgloss.NewStyle().Width(width).Render(body.String())
		blocks = append(blocks, title+"\n"+text)
	}
	return strings.Join(blocks, "\n\n")
}

func renderSegment(segment report.Segment, noColor bool) string {
	if !segment.Highlighted() {
		return segment.Text
	}
	if noColor {
		return "[" + segment.Text + "]"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(bucketColor(segment.Bucket)).
		Render(segment.Text)
}

// renderFooter renders the error or last event line and key hints.
func renderFooter(state State, closed, noColor bool) string {
	var line string
	switch {
	case state.Err != "":
		line = stylize("Error: "+state.Err, noColor, lipgloss.Color("196"))
	case state.LastEvent != "":
		line = stylize(state.LastEvent, noColor, lipgloss.Color("244"))
	}
	hint := "q quit  ↑/↓ scroll"
	if closed {
		hint = "done  " + hint
	}
	hint = stylize(hint, noColor, lipgloss.Color("240"))
	if line == "" {
		return hint
	}
	return line + "\n" + hint
}
