package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File names written inside a run directory.
const (
	ResultFile   = "result.json"
	HTMLFile     = "report.html"
	MarkdownFile = "report.md"
)

// OutputPaths describes filesystem locations for one run's outputs.
type OutputPaths struct {
	Root  string
	RunID string
}

// NewOutputPaths validates and constructs output paths metadata.
func NewOutputPaths(root, runID string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	if strings.TrimSpace(runID) == "" {
		return OutputPaths{}, fmt.Errorf("run ID is empty")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return OutputPaths{}, fmt.Errorf("invalid run ID %q", runID)
	}
	return OutputPaths{Root: root, RunID: runID}, nil
}

// RunDir returns the directory for the run.
func (o OutputPaths) RunDir() string {
	return filepath.Join(o.Root, o.RunID)
}

// ResultPath returns the path to result.json.
func (o OutputPaths) ResultPath() string {
	return filepath.Join(o.RunDir(), ResultFile)
}

// HTMLPath returns the path to the HTML report.
func (o OutputPaths) HTMLPath() string {
	return filepath.Join(o.RunDir(), HTMLFile)
}

// MarkdownPath returns the path to the Markdown report.
func (o OutputPaths) MarkdownPath() string {
	return filepath.Join(o.RunDir(), MarkdownFile)
}
