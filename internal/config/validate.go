package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if parsed, err := url.Parse(cfg.Service.BaseURL); err != nil {
		add("service.base_url", fmt.Sprintf("invalid url %q", cfg.Service.BaseURL))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		add("service.base_url", fmt.Sprintf("unsupported scheme %q (expected http or https)", parsed.Scheme))
	} else if parsed.Host == "" {
		add("service.base_url", "host is required")
	}
	if cfg.Service.TimeoutSeconds < 0 {
		add("service.timeout_seconds", "must be >= 0")
	}
	switch cfg.Service.RubricFlow {
	case RubricFlowList, RubricFlowID:
	default:
		add("service.rubric_flow", fmt.Sprintf("unsupported flow %q (expected list|id)", cfg.Service.RubricFlow))
	}

	switch cfg.Classify.Policy {
	case PolicyFull, PolicyAny:
	default:
		add("classify.policy", fmt.Sprintf("unsupported policy %q (expected full|any)", cfg.Classify.Policy))
	}

	switch cfg.Suggestions.Provider {
	case ProviderPlaceholder:
	case ProviderGemini:
		if strings.TrimSpace(cfg.Suggestions.Model) == "" {
			add("suggestions.model", "is required for the gemini provider")
		}
		if strings.TrimSpace(cfg.Suggestions.APIKeyEnv) == "" {
			add("suggestions.api_key_env", "is required for the gemini provider")
		}
	default:
		add("suggestions.provider", fmt.Sprintf("unsupported provider %q (expected placeholder|gemini)", cfg.Suggestions.Provider))
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		add("output.dir", "is required")
	}
	seen := map[string]struct{}{}
	for i, format := range cfg.Output.Formats {
		field := fmt.Sprintf("output.formats[%d]", i)
		switch format {
		case FormatJSON, FormatHTML, FormatMarkdown:
		default:
			add(field, fmt.Sprintf("unsupported format %q", format))
			continue
		}
		if _, dup := seen[format]; dup {
			add(field, fmt.Sprintf("duplicate format %q", format))
		}
		seen[format] = struct{}{}
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		add("history.path", "is required when history is enabled")
	}
	if cfg.Batch.Concurrency < 1 {
		add("batch.concurrency", "must be >= 1")
	}
	switch cfg.UI.Mode {
	case "auto", "live", "plain":
	default:
		add("ui.mode", fmt.Sprintf("unsupported mode %q (expected auto|live|plain)", cfg.UI.Mode))
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("unsupported level %q", cfg.Log.Level))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
