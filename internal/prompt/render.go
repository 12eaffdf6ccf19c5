// Package prompt renders the instructions sent to suggestion models.
package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"essaylens/internal/analysis"
)

// MaxEssayRunes bounds the essay excerpt included in a prompt.
const MaxEssayRunes = 4000

// Suggestion is the prompt asking for advice on one unmet criterion.
func Suggestion(req analysis.SuggestionRequest) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("You are helping a student revise an essay against a grading rubric.\n")
		fmt.Fprintf(&b, "Rubric criterion: %s\n", req.Criterion)
		if req.Bucket == analysis.BucketPartial {
			b.WriteString("The essay addresses this criterion only partially.\n")
		} else {
			b.WriteString("The essay does not address this criterion.\n")
		}
		if req.Section != "" {
			fmt.Fprintf(&b, "Closest section: %s\n", req.Section)
		}
		if req.Snippet != "" {
			fmt.Fprintf(&b, "Closest passage: %q\n", req.Snippet)
		}
		if essay := excerpt(req.Essay); essay != "" {
			fmt.Fprintf(&b, "\nEssay:\n%s\n", essay)
		}
		b.WriteString("\nReply with one or two concrete sentences of advice. Do not restate the criterion.")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderSuggestion builds the suggestion prompt text.
func RenderSuggestion(ctx context.Context, req analysis.SuggestionRequest) (string, error) {
	var builder strings.Builder
	if err := Suggestion(req).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func excerpt(essay string) string {
	essay = strings.TrimSpace(essay)
	runes := []rune(essay)
	if len(runes) <= MaxEssayRunes {
		return essay
	}
	return string(runes[:MaxEssayRunes]) + "..."
}
