package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"essaylens/internal/analysis"
)

// Output formats accepted by WriteOutputs.
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Written lists the files produced by WriteOutputs.
type Written struct {
	Paths OutputPaths
	Files []string
}

// WriteOutputs writes the requested formats under dir/<run-id>. result.json
// is always written so the run can be reloaded and served later.
func WriteOutputs(ctx context.Context, result analysis.Result, dir string, formats []string) (Written, error) {
	if dir == "" {
		return Written{}, fmt.Errorf("output directory is required")
	}
	paths, err := NewOutputPaths(dir, result.RunID)
	if err != nil {
		return Written{}, err
	}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return Written{}, fmt.Errorf("create output dir: %w", err)
	}
	written := Written{Paths: paths}
	if err := writeJSON(paths.ResultPath(), result); err != nil {
		return Written{}, err
	}
	written.Files = append(written.Files, paths.ResultPath())

	for _, format := range formats {
		switch format {
		case FormatJSON:
		case FormatHTML:
			html, err := RenderHTML(ctx, result)
			if err != nil {
				return Written{}, fmt.Errorf("render html: %w", err)
			}
			if err := writeFile(paths.HTMLPath(), []byte(html)); err != nil {
				return Written{}, err
			}
			written.Files = append(written.Files, paths.HTMLPath())
		case FormatMarkdown:
			if err := writeFile(paths.MarkdownPath(), []byte(Markdown(result))); err != nil {
				return Written{}, err
			}
			written.Files = append(written.Files, paths.MarkdownPath())
		default:
			return Written{}, fmt.Errorf("unsupported output format %q", format)
		}
	}
	return written, nil
}

// writeJSON writes a result as pretty JSON.
func writeJSON(path string, result analysis.Result) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFile(path, append(payload, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
