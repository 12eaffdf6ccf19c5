package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"essaylens/internal/analysis"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:960px;color:#222}
h1{margin-bottom:.25rem}.meta{color:#666;font-size:.9rem}
table{border-collapse:collapse;width:100%;margin:1rem 0}
th,td{border-bottom:1px solid #ddd;padding:.4rem .5rem;text-align:left;vertical-align:top}
.chart .row{display:flex;align-items:center;margin:.25rem 0}
.chart .label{width:6rem}.chart .bar{height:1rem;margin-right:.5rem}
.met{color:#2e7d32}.partial{color:#b26a00}.missing{color:#c62828}
.bar.met{background:#2e7d32}.bar.partial{background:#f9a825}.bar.missing{background:#c62828}
mark.met{background:#c8e6c9}mark.partial{background:#fff3c4}mark.missing{background:#ffcdd2}
.section{white-space:pre-wrap;border-left:3px solid #ddd;padding-left:1rem}`

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

// Page renders the full HTML report for a result.
func Page(result analysis.Result) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.printf("<title>Essay analysis %s</title><style>%s</style></head><body>", esc(result.RunID), pageStyle)
		h.printf("<h1>Essay analysis</h1><p class=\"meta\">Run %s &middot; essay %s &middot; rubric %s &middot; %s/%s &middot; policy %s &middot; %s</p>",
			esc(result.RunID), esc(result.Input.EssaySource), esc(result.Input.RubricSource),
			esc(string(result.Input.Mode)), esc(string(result.Input.RubricFlow)), esc(string(result.Input.Policy)),
			esc(result.StartedAt.Format(time.RFC3339)))
		writeSummary(h, result.Summary)
		writeCoverage(h, result.Coverage)
		writeMatches(h, result.Matches)
		writeSections(h, Sections(result))
		h.printf("</body></html>\n")
		return h.err
	})
}

func writeSummary(h *htmlWriter, summary analysis.Summary) {
	h.printf("<h2>Summary</h2><p>%d criteria &middot; score %s of %s (%.0f%%)</p><div class=\"chart\">",
		summary.Total, formatScore(summary.Score), formatScore(summary.MaxScore), summary.Percent())
	for _, bucket := range analysis.Buckets {
		count := summary.Count(bucket)
		width := 0.0
		if summary.Total > 0 {
			width = float64(count) / float64(summary.Total) * 100
		}
		h.printf("<div class=\"row\"><span class=\"label %s\">%s</span><span class=\"bar %s\" style=\"width:%.1f%%\"></span><span>%d</span></div>",
			bucket, bucketLabel(bucket), bucket, width, count)
	}
	h.printf("</div>")
}

func writeCoverage(h *htmlWriter, coverage []analysis.GradeCoverage) {
	if len(coverage) == 0 {
		return
	}
	h.printf("<h2>Grade coverage</h2><table><thead><tr><th>Grade</th><th>Met</th><th>Total</th></tr></thead><tbody>")
	for _, entry := range coverage {
		h.printf("<tr><td>%s</td><td>%d</td><td>%d</td></tr>", esc(string(entry.Grade)), entry.Met, entry.Total)
	}
	h.printf("</tbody></table>")
}

func writeMatches(h *htmlWriter, matches []analysis.ClassifiedMatch) {
	h.printf("<h2>Criteria</h2><table><thead><tr><th>Criterion</th><th>Grade</th><th>Result</th><th>Score</th><th>Section</th><th>Snippet</th><th>Suggestion</th></tr></thead><tbody>")
	for _, match := range matches {
		h.printf("<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td><td>%s / %s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			esc(match.Criterion), esc(string(match.Grade)), match.Bucket, bucketLabel(match.Bucket),
			formatScore(match.Score), formatScore(match.MaxScore),
			esc(match.Section), esc(match.Snippet), esc(match.Suggestion))
	}
	h.printf("</tbody></table>")
}

func writeSections(h *htmlWriter, views []SectionView) {
	if len(views) == 0 {
		return
	}
	h.printf("<h2>Essay</h2>")
	for _, view := range views {
		h.printf("<h3>%s</h3><div class=\"section\">", esc(view.Section.Name))
		for _, segment := range view.Segments {
			if segment.Highlighted() {
				h.printf("<mark class=\"%s\" title=\"%s\">%s</mark>", segment.Bucket, esc(segment.Criterion), esc(segment.Text))
				continue
			}
			h.printf("%s", esc(segment.Text))
		}
		h.printf("</div>")
	}
}

// Index renders a listing of stored runs linking to hrefPrefix + run id.
func Index(runs []RunEntry, hrefPrefix string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>essaylens runs</title><style>%s</style></head><body>", pageStyle)
		h.printf("<h1>essaylens runs</h1>")
		if len(runs) == 0 {
			h.printf("<p>No runs yet. Run <code>essaylens analyze</code> to create one.</p>")
		} else {
			h.printf("<table><thead><tr><th>Run</th><th>Essay</th><th>Met</th><th>Partial</th><th>Missing</th><th>Score</th></tr></thead><tbody>")
			for _, run := range runs {
				summary := run.Result.Summary
				h.printf("<tr><td><a href=\"%s%s\">%s</a></td><td>%s</td><td class=\"met\">%d</td><td class=\"partial\">%d</td><td class=\"missing\">%d</td><td>%.0f%%</td></tr>",
					esc(hrefPrefix), esc(run.RunID), esc(run.RunID), esc(run.Result.Input.EssaySource),
					summary.Met, summary.Partial, summary.Missing, summary.Percent())
			}
			h.printf("</tbody></table>")
		}
		h.printf("</body></html>\n")
		return h.err
	})
}

// RenderHTML renders Page into a string.
func RenderHTML(ctx context.Context, result analysis.Result) (string, error) {
	var builder strings.Builder
	if err := Page(result).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func bucketLabel(bucket analysis.Bucket) string {
	switch bucket {
	case analysis.BucketMet:
		return "Met"
	case analysis.BucketPartial:
		return "Partial"
	case analysis.BucketMissing:
		return "Missing"
	}
	return string(bucket)
}

// formatScore drops trailing zeros: 1 -> "1", 0.4213 -> "0.42".
func formatScore(score float64) string {
	text := fmt.Sprintf("%.2f", score)
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
