package live

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"essaylens/internal/analysis"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the criteria table columns for a typical terminal.
func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth sizes the criterion and suggestion columns to the width.
func columnsForWidth(width int) []table.Column {
	fixed := 8 + 6 + 10 + 12
	flexible := width - fixed - 12
	if flexible < 30 {
		flexible = 30
	}
	return []table.Column{
		{Title: "Criterion", Width: flexible * 2 / 5},
		{Title: "Grade", Width: 6},
		{Title: "Status", Width: 8},
		{Title: "Score", Width: 10},
		{Title: "Section", Width: 12},
		{Title: "Suggestion", Width: flexible - flexible*2/5},
	}
}

// rowsForResult converts classified matches into table rows. Cells stay
// unstyled because the table truncates by rune width.
func rowsForResult(result *analysis.Result) []table.Row {
	if result == nil {
		return []table.Row{}
	}
	rows := make([]table.Row, 0, len(result.Matches))
	for _, match := range result.Matches {
		rows = append(rows, table.Row{
			truncate(match.Criterion, 60),
			string(match.Grade),
			string(match.Bucket),
			formatScore(match.Score, match.MaxScore),
			truncate(match.Section, 12),
			truncate(match.Suggestion, 80),
		})
	}
	return rows
}
