package config

import (
	"path/filepath"
	"strings"
)

// Normalize trims and lowercases enum fields and fills unset values.
func Normalize(cfg *Config) {
	cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Service.BaseURL), "/")
	if cfg.Service.BaseURL == "" {
		cfg.Service.BaseURL = DefaultServiceURL
	}
	if cfg.Service.TimeoutSeconds == 0 {
		cfg.Service.TimeoutSeconds = DefaultTimeoutSeconds
	}
	cfg.Service.RubricFlow = lowerOr(cfg.Service.RubricFlow, RubricFlowList)
	cfg.Classify.Policy = lowerOr(cfg.Classify.Policy, PolicyFull)

	cfg.Suggestions.Provider = lowerOr(cfg.Suggestions.Provider, ProviderPlaceholder)
	if cfg.Suggestions.Provider == ProviderGemini {
		if strings.TrimSpace(cfg.Suggestions.Model) == "" {
			cfg.Suggestions.Model = DefaultGeminiModel
		}
		if strings.TrimSpace(cfg.Suggestions.APIKeyEnv) == "" {
			cfg.Suggestions.APIKeyEnv = DefaultAPIKeyEnv
		}
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{FormatJSON, FormatHTML}
	}
	for i := range cfg.Output.Formats {
		cfg.Output.Formats[i] = strings.ToLower(strings.TrimSpace(cfg.Output.Formats[i]))
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultConcurrency
	}
	cfg.UI.Mode = lowerOr(cfg.UI.Mode, "auto")
	cfg.Log.Level = lowerOr(cfg.Log.Level, DefaultLogLevel)
}

// ResolvePaths makes output, history and log paths absolute against baseDir.
func ResolvePaths(cfg *Config, baseDir string) {
	if baseDir == "" {
		return
	}
	cfg.Output.Dir = resolve(baseDir, cfg.Output.Dir)
	cfg.History.Path = resolve(baseDir, cfg.History.Path)
	if cfg.Log.File != "" {
		cfg.Log.File = resolve(baseDir, cfg.Log.File)
	}
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
