package analysis

import (
	"context"

	"essaylens/internal/scoring"
)

// Service is the scoring service surface a session drives. *scoring.Client
// implements it.
type Service interface {
	Structure(ctx context.Context, text string) ([]scoring.Section, error)
	Analyze(ctx context.Context, text string, criteria []string) ([]scoring.Match, error)
	RegisterRubric(ctx context.Context, rubricText string) (string, error)
	ScoreEssay(ctx context.Context, essayText, rubricID string) ([]scoring.Match, error)
	StructurePDF(ctx context.Context, essay scoring.Upload) ([]scoring.Section, error)
	AnalyzePDF(ctx context.Context, essay scoring.Upload, criteria []string) ([]scoring.Match, error)
	RegisterRubricPDF(ctx context.Context, rubricFile scoring.Upload) (string, error)
	ScoreEssayPDF(ctx context.Context, essay scoring.Upload, rubricID string) ([]scoring.Match, error)
}

var _ Service = (*scoring.Client)(nil)
