package config

import "time"

// Config is the decoded .essaylens/config.yml file.
type Config struct {
	Version     int               `yaml:"version"`
	Service     ServiceConfig     `yaml:"service"`
	Classify    ClassifyConfig    `yaml:"classify"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Output      OutputConfig      `yaml:"output"`
	History     HistoryConfig     `yaml:"history"`
	Batch       BatchConfig       `yaml:"batch"`
	UI          UIConfig          `yaml:"ui"`
	Log         LogConfig         `yaml:"log"`
}

// ServiceConfig locates the remote scoring service.
type ServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// RubricFlow is "list" (send criteria with every request) or "id"
	// (register the rubric first and score against its id).
	RubricFlow string `yaml:"rubric_flow"`
}

type ClassifyConfig struct {
	// Policy is "full" (met when score equals max score) or "any" (met when
	// score is above zero).
	Policy string `yaml:"policy"`
}

type SuggestionsConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type UIConfig struct {
	Mode    string `yaml:"mode"`
	NoColor bool   `yaml:"no_color"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Accepted enum values.
const (
	RubricFlowList = "list"
	RubricFlowID   = "id"

	PolicyFull = "full"
	PolicyAny  = "any"

	ProviderPlaceholder = "placeholder"
	ProviderGemini      = "gemini"

	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Defaults applied by Normalize.
const (
	DefaultServiceURL     = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 60
	DefaultGeminiModel    = "gemini-2.0-flash-001"
	DefaultAPIKeyEnv      = "GEMINI_API_KEY"
	DefaultConcurrency    = 4
	DefaultLogLevel       = "info"
)

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg := Config{Version: 1}
	Normalize(&cfg)
	return cfg
}

// RequestTimeout returns the per-request timeout; zero disables it.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}
