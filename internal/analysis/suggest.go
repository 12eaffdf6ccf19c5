package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Suggestion sources recorded on ClassifiedMatch.
const (
	SourceService     = "service"
	SourcePlaceholder = "placeholder"
	SourceGemini      = "gemini"
)

// SuggestionRequest carries what a Suggester may use to write advice.
type SuggestionRequest struct {
	Criterion string
	Bucket    Bucket
	Section   string
	Snippet   string
	Essay     string
}

// Suggester writes improvement advice for a criterion that was not met.
type Suggester interface {
	// Name identifies the suggester in reports.
	Name() string
	Suggest(ctx context.Context, req SuggestionRequest) (string, error)
}

// Placeholder synthesizes generic advice without calling out.
type Placeholder struct{}

// Name returns SourcePlaceholder.
func (Placeholder) Name() string { return SourcePlaceholder }

// Suggest never fails. Met criteria get no advice.
func (Placeholder) Suggest(_ context.Context, req SuggestionRequest) (string, error) {
	return PlaceholderText(req.Criterion, req.Bucket), nil
}

// PlaceholderText returns the generic advice for a bucket.
func PlaceholderText(criterion string, bucket Bucket) string {
	switch bucket {
	case BucketMissing:
		return fmt.Sprintf("Add a passage that addresses %q.", criterion)
	case BucketPartial:
		return fmt.Sprintf("Develop %q further with more specific support.", criterion)
	}
	return ""
}

// ResolveSuggestions fills Suggestion on every unmet match that the service
// left blank. Suggester errors fall back to the placeholder text.
func ResolveSuggestions(ctx context.Context, suggester Suggester, essay string, matches []ClassifiedMatch, logger *zap.Logger) {
	if suggester == nil {
		suggester = Placeholder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for i := range matches {
		match := &matches[i]
		if match.Suggestion != "" {
			match.SuggestionSource = SourceService
			continue
		}
		if match.Bucket == BucketMet {
			continue
		}
		text, err := suggester.Suggest(ctx, SuggestionRequest{
			Criterion: match.Criterion,
			Bucket:    match.Bucket,
			Section:   match.Section,
			Snippet:   match.Snippet,
			Essay:     essay,
		})
		source := suggester.Name()
		if err != nil || text == "" {
			if err != nil {
				logger.Warn("suggestion failed, using placeholder",
					zap.String("criterion", match.Criterion),
					zap.String("suggester", source),
					zap.Error(err))
			}
			text = PlaceholderText(match.Criterion, match.Bucket)
			source = SourcePlaceholder
		}
		match.Suggestion = text
		match.SuggestionSource = source
	}
}
