package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"essaylens/internal/analysis"
	"essaylens/internal/config"
	"essaylens/internal/history"
	"essaylens/internal/logging"
	"essaylens/internal/scoring"
	"essaylens/internal/suggest"
)

// app holds global flags and lazily loaded configuration.
type app struct {
	stdout, stderr io.Writer

	configPath string
	serviceURL string
	uiMode     string
	logLevel   string
	noColor    bool
	verbose    bool

	cfg       config.Config
	foundPath string
	logger    *zap.Logger
}

// Test seams.
var (
	newService = func(cfg config.Config, logger *zap.Logger) analysis.Service {
		return scoring.New(cfg.Service.BaseURL,
			scoring.WithTimeout(cfg.RequestTimeout()),
			scoring.WithLogger(logger),
		)
	}
	newGemini = func(ctx context.Context, apiKey, model string, logger *zap.Logger) (analysis.Suggester, error) {
		return suggest.NewGemini(ctx, apiKey, model, logger)
	}
	lookupEnv = os.LookupEnv
)

// load reads the config and applies global flag overrides.
func (a *app) load() error {
	cfg, found, err := config.LoadOrDefault(a.configPath, "")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if url := strings.TrimSpace(a.serviceURL); url != "" {
		cfg.Service.BaseURL = strings.TrimRight(url, "/")
	}
	if a.uiMode != "" {
		cfg.UI.Mode = strings.ToLower(strings.TrimSpace(a.uiMode))
	}
	if a.noColor || colorDisabled() {
		cfg.UI.NoColor = true
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.foundPath = found
	return nil
}

// initLogger builds the logger. Without a log file, a live UI gets a no-op
// logger so stderr output cannot draw over the screen.
func (a *app) initLogger(live bool) error {
	if live && a.cfg.Log.File == "" {
		a.logger = zap.NewNop()
		return nil
	}
	logger, err := logging.New(logging.Options{
		Level:   a.cfg.Log.Level,
		File:    a.cfg.Log.File,
		Verbose: a.verbose,
		Console: a.cfg.Log.File == "",
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) syncLogger() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// suggester returns the configured suggestion provider.
func (a *app) suggester(ctx context.Context) (analysis.Suggester, error) {
	if a.cfg.Suggestions.Provider != config.ProviderGemini {
		return analysis.Placeholder{}, nil
	}
	key := a.cfg.APIKey(lookupEnv)
	if key == "" {
		return nil, fmt.Errorf("suggestions.provider is gemini but %s is not set", a.cfg.Suggestions.APIKeyEnv)
	}
	return newGemini(ctx, key, a.cfg.Suggestions.Model, a.logger)
}

// openHistory opens the history store when enabled by config or flag.
func (a *app) openHistory(ctx context.Context, force bool) (*history.Store, error) {
	if !a.cfg.History.Enabled && !force {
		return nil, nil
	}
	return history.Open(ctx, a.cfg.History.Path, a.logger)
}

// analysisFlags select analysis options; empty values fall back to config.
type analysisFlags struct {
	mode         string
	flow         string
	rubricFormat string
	policy       string
}

// options resolves analysis options. An empty mode becomes pdf when the
// essay path ends in .pdf.
func (a *app) options(flags analysisFlags, essayPath string) (analysis.Options, error) {
	opts := analysis.Options{
		Mode:         analysis.Mode(strings.ToLower(flags.mode)),
		RubricFlow:   analysis.RubricFlow(firstNonEmpty(flags.flow, a.cfg.Service.RubricFlow)),
		RubricFormat: analysis.RubricFormat(strings.ToLower(flags.rubricFormat)),
		Policy:       analysis.Policy(firstNonEmpty(flags.policy, a.cfg.Classify.Policy)),
	}
	if opts.Mode == "" && strings.EqualFold(filepath.Ext(essayPath), ".pdf") {
		opts.Mode = analysis.ModePDF
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return analysis.Options{}, usageErrorf("%v", err)
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.ToLower(strings.TrimSpace(value)); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
