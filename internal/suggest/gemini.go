// Package suggest provides model-backed suggesters for unmet criteria.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"essaylens/internal/analysis"
	"essaylens/internal/prompt"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash-001"

// generator is the slice of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini writes suggestions with a Gemini model.
type Gemini struct {
	models generator
	model  string
	logger *zap.Logger
}

// NewGemini creates a Gemini suggester for the given API key.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, model, logger), nil
}

func newGemini(models generator, model string, logger *zap.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{models: models, model: model, logger: logger}
}

// Name returns the source recorded on matches.
func (g *Gemini) Name() string {
	return analysis.SourceGemini
}

// Suggest asks the model for one or two sentences of advice. An empty
// answer returns "" so the caller can substitute its own text.
func (g *Gemini) Suggest(ctx context.Context, req analysis.SuggestionRequest) (string, error) {
	if req.Bucket == analysis.BucketMet {
		return "", nil
	}
	text, err := prompt.RenderSuggestion(ctx, req)
	if err != nil {
		return "", err
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return "", fmt.Errorf("gemini suggestion for %q: %w", req.Criterion, err)
	}
	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		g.logger.Debug("gemini returned no text", zap.String("criterion", req.Criterion))
		return "", nil
	}
	return answer, nil
}
