package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"essaylens/internal/analysis"
)

// stepLabel maps plan steps to display labels.
func stepLabel(step analysis.Step) string {
	switch step {
	case analysis.StepStructure:
		return "structure"
	case analysis.StepRegisterRubric:
		return "register rubric"
	case analysis.StepScore:
		return "score"
	default:
		return string(step)
	}
}

// formatStepEvent renders a one-line description of a step update.
func formatStepEvent(event analysis.StepEvent) string {
	label := stepLabel(event.Step)
	switch event.Status {
	case analysis.StepStarted:
		return label + " started"
	case analysis.StepFinished:
		return label + " done " + formatDuration(event.Duration)
	case analysis.StepFailed:
		if event.Error != "" {
			return label + " failed: " + event.Error
		}
		return label + " failed"
	default:
		return label + " " + string(event.Status)
	}
}

// formatDuration renders durations rounded for display.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// formatScore renders a score pair like 0.5/1.
func formatScore(score, maxScore float64) string {
	return trimFloat(score) + "/" + trimFloat(maxScore)
}

func trimFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// truncate shortens text to limit runes after collapsing whitespace.
func truncate(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if limit <= 3 || len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

// bucketColor selects the display color for a bucket.
func bucketColor(bucket analysis.Bucket) lipgloss.Color {
	switch bucket {
	case analysis.BucketMet:
		return lipgloss.Color("42")
	case analysis.BucketPartial:
		return lipgloss.Color("220")
	case analysis.BucketMissing:
		return lipgloss.Color("196")
	default:
		return lipgloss.Color("244")
	}
}

// stepColor selects the display color for a step status.
func stepColor(status analysis.StepStatus) lipgloss.Color {
	switch status {
	case analysis.StepFinished:
		return lipgloss.Color("42")
	case analysis.StepFailed:
		return lipgloss.Color("196")
	case analysis.StepStarted:
		return lipgloss.Color("33")
	default:
		return lipgloss.Color("244")
	}
}

// bar renders a proportional bar of width cells.
func bar(count, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := count * width / total
	if count > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
