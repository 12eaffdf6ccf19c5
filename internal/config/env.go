package config

import "strings"

// Environment variables that override file values.
const (
	EnvServiceURL = "ESSAYLENS_SERVICE_URL"
	EnvLogLevel   = "ESSAYLENS_LOG_LEVEL"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides config values from the environment.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if lookup == nil {
		return
	}
	if value, ok := lookup(EnvServiceURL); ok && strings.TrimSpace(value) != "" {
		cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
	}
	if value, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(value))
	}
}

// APIKey returns the suggestion provider key from the configured variable.
func (c Config) APIKey(lookup LookupFunc) string {
	if lookup == nil || c.Suggestions.APIKeyEnv == "" {
		return ""
	}
	value, _ := lookup(c.Suggestions.APIKeyEnv)
	return strings.TrimSpace(value)
}
