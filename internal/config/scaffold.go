package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const scaffoldTemplate = `version: 1
service:
  base_url: %q
  timeout_seconds: 60
  # list: send criteria with each request; id: register the rubric first
  rubric_flow: %q

classify:
  # full: met when score equals max_score; any: met when score > 0
  policy: "full"

suggestions:
  provider: "placeholder"

output:
  dir: %q
  formats: ["json", "html", "markdown"]

history:
  enabled: false
  path: ".essaylens/history.duckdb"

batch:
  concurrency: 4

ui:
  mode: "auto"

log:
  level: "info"
`

// ScaffoldOptions holds the values prompted for by essaylens init.
type ScaffoldOptions struct {
	ServiceURL string
	RubricFlow string
	OutputDir  string
}

// RenderScaffold renders the starter config file.
func RenderScaffold(opts ScaffoldOptions) string {
	serviceURL := strings.TrimSpace(opts.ServiceURL)
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}
	flow := strings.TrimSpace(opts.RubricFlow)
	if flow == "" {
		flow = RubricFlowList
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return fmt.Sprintf(scaffoldTemplate, serviceURL, flow, outputDir)
}

// Scaffold writes a starter config file, refusing to overwrite.
func Scaffold(configPath string, opts ScaffoldOptions) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(RenderScaffold(opts)), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
