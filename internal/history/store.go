// Package history records finished analyses in a local DuckDB database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"essaylens/internal/analysis"
	"essaylens/internal/duckdb"
)

// ErrDuplicateRun is returned when a run id was already recorded.
var ErrDuplicateRun = errors.New("run already recorded")

// Store persists analysis results.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	EssaySource  string
	RubricSource string
	Mode         string
	RubricFlow   string
	RubricFormat string
	Policy       string
	RubricID     string
	ServiceURL   string
	Met          int
	Partial      int
	Missing      int
	Total        int
	Score        float64
	MaxScore     float64
}

// Percent returns the score as a percentage of the maximum.
func (r RunRecord) Percent() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.Score / r.MaxScore * 100
}

// MatchRecord is one row of the matches table.
type MatchRecord struct {
	Position         int
	Criterion        string
	Grade            string
	Bucket           string
	Score            float64
	MaxScore         float64
	Section          string
	Snippet          string
	Suggestion       string
	SuggestionSource string
}

// CriterionStat aggregates a criterion across recorded runs.
type CriterionStat struct {
	Criterion string
	Runs      int
	Met       int
	Partial   int
	Missing   int
	AvgRatio  float64
}

// Open opens or creates the history database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// NewStore wraps an already opened database that has the schema applied.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a result and its matches in one transaction.
func (s *Store) Record(ctx context.Context, result analysis.Result) (err error) {
	if strings.TrimSpace(result.RunID) == "" {
		return errors.New("history: run id is required")
	}
	var existing int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, result.RunID).Scan(&existing); err != nil {
		return fmt.Errorf("history: check run: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("history: %s: %w", result.RunID, ErrDuplicateRun)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	in := result.Input
	sum := result.Summary
	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (
		run_id, started_at, finished_at, essay_source, rubric_source, mode, rubric_flow,
		rubric_format, policy, rubric_id, service_url, met, partial, missing, total, score, max_score
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.StartedAt.UTC(), result.FinishedAt.UTC(),
		in.EssaySource, in.RubricSource, string(in.Mode), string(in.RubricFlow),
		string(in.RubricFormat), string(in.Policy), in.RubricID, in.ServiceURL,
		sum.Met, sum.Partial, sum.Missing, sum.Total, sum.Score, sum.MaxScore,
	); err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	for i, match := range result.Matches {
		if _, err = tx.ExecContext(ctx, `INSERT INTO matches (
			match_id, run_id, position, criterion, grade, bucket, score, max_score,
			section, snippet, suggestion, suggestion_source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.RunID, i, match.Criterion, string(match.Grade), string(match.Bucket),
			match.Score, match.MaxScore, match.Section, match.Snippet, match.Suggestion, match.SuggestionSource,
		); err != nil {
			return fmt.Errorf("history: insert match %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	s.logger.Debug("history recorded",
		zap.String("run_id", result.RunID),
		zap.Int("matches", len(result.Matches)),
	)
	return nil
}

// List returns recorded runs, newest first. A limit of zero or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT run_id, started_at, finished_at, essay_source, rubric_source, mode, rubric_flow,
		rubric_format, policy, COALESCE(rubric_id, ''), COALESCE(service_url, ''),
		met, partial, missing, total, score, max_score
		FROM runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID, &rec.StartedAt, &rec.FinishedAt, &rec.EssaySource, &rec.RubricSource,
			&rec.Mode, &rec.RubricFlow, &rec.RubricFormat, &rec.Policy, &rec.RubricID, &rec.ServiceURL,
			&rec.Met, &rec.Partial, &rec.Missing, &rec.Total, &rec.Score, &rec.MaxScore,
		); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	return out, nil
}

// Matches returns the stored matches of a run in their original order.
func (s *Store) Matches(ctx context.Context, runID string) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, criterion, COALESCE(grade, ''), bucket, score, max_score,
		COALESCE(section, ''), COALESCE(snippet, ''), COALESCE(suggestion, ''), COALESCE(suggestion_source, '')
		FROM matches WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: list matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(
			&rec.Position, &rec.Criterion, &rec.Grade, &rec.Bucket, &rec.Score, &rec.MaxScore,
			&rec.Section, &rec.Snippet, &rec.Suggestion, &rec.SuggestionSource,
		); err != nil {
			return nil, fmt.Errorf("history: scan match: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list matches: %w", err)
	}
	return out, nil
}

// CriterionStats aggregates outcomes per criterion across all runs, most
// frequently missing first.
func (s *Store) CriterionStats(ctx context.Context) ([]CriterionStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT criterion, runs, met, partial, missing, avg_ratio
		FROM v_criterion_stats ORDER BY missing DESC, criterion`)
	if err != nil {
		return nil, fmt.Errorf("history: criterion stats: %w", err)
	}
	defer rows.Close()

	var out []CriterionStat
	for rows.Next() {
		var stat CriterionStat
		if err := rows.Scan(&stat.Criterion, &stat.Runs, &stat.Met, &stat.Partial, &stat.Missing, &stat.AvgRatio); err != nil {
			return nil, fmt.Errorf("history: scan stat: %w", err)
		}
		out = append(out, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: criterion stats: %w", err)
	}
	return out, nil
}
