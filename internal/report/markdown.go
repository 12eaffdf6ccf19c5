package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"essaylens/internal/analysis"
)

// Markdown renders a result as a Markdown document.
func Markdown(result analysis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Essay analysis\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Essay: %s\n", result.Input.EssaySource)
	fmt.Fprintf(&b, "- Rubric: %s (%s, %s flow)\n", result.Input.RubricSource, result.Input.RubricFormat, result.Input.RubricFlow)
	fmt.Fprintf(&b, "- Policy: %s\n\n", result.Input.Policy)

	summary := result.Summary
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "Score %s of %s (%.0f%%).\n\n", formatScore(summary.Score), formatScore(summary.MaxScore), summary.Percent())
	fmt.Fprintf(&b, "| Result | Count | |\n|---|---:|---|\n")
	for _, bucket := range analysis.Buckets {
		count := summary.Count(bucket)
		fmt.Fprintf(&b, "| %s | %d | %s |\n", bucketLabel(bucket), count, textBar(count, summary.Total, 20))
	}
	b.WriteString("\n")

	if len(result.Coverage) > 0 {
		fmt.Fprintf(&b, "## Grade coverage\n\n| Grade | Met | Total |\n|---|---:|---:|\n")
		for _, entry := range result.Coverage {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", entry.Grade, entry.Met, entry.Total)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Criteria\n\n| Criterion | Result | Score | Section | Suggestion |\n|---|---|---:|---|---|\n")
	for _, match := range result.Matches {
		fmt.Fprintf(&b, "| %s | %s | %s / %s | %s | %s |\n",
			cell(match.Criterion), bucketLabel(match.Bucket),
			formatScore(match.Score), formatScore(match.MaxScore),
			cell(match.Section), cell(match.Suggestion))
	}

	views := Sections(result)
	if len(views) > 0 {
		b.WriteString("\n## Essay\n")
		for _, view := range views {
			fmt.Fprintf(&b, "\n### %s\n\n", view.Section.Name)
			for _, segment := range view.Segments {
				if segment.Highlighted() {
					fmt.Fprintf(&b, "**%s**", strings.TrimSpace(segment.Text))
					continue
				}
				b.WriteString(segment.Text)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderTerminal renders Markdown for a terminal. style is a glamour
// standard style name such as "dark", "light" or "notty".
func RenderTerminal(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "notty"
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func cell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", `\|`)
}

func textBar(count, total, width int) string {
	if total <= 0 || count <= 0 {
		return ""
	}
	filled := count * width / total
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled)
}
