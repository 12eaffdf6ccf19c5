package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"essaylens/internal/analysis"
	"essaylens/internal/scoring"
)

// inputFlags name where the essay and rubric come from.
type inputFlags struct {
	essay      string
	rubric     string
	essayText  string
	rubricText string
}

const inlineSource = "inline"

// loadInput reads the essay and rubric for one analysis. "-" reads stdin.
// PDF rubrics are uploaded as files and therefore need the id flow.
func loadInput(flags inputFlags, opts analysis.Options) (analysis.Input, error) {
	var input analysis.Input
	if flags.essay == "-" && flags.rubric == "-" {
		return input, usageErrorf("essay and rubric cannot both be read from stdin")
	}

	switch {
	case flags.essayText != "":
		if opts.Mode == analysis.ModePDF {
			return input, usageErrorf("--essay-text cannot be used with --mode pdf")
		}
		input.EssayText = flags.essayText
		input.EssaySource = inlineSource
	case flags.essay == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input, fmt.Errorf("read essay from stdin: %w", err)
		}
		if opts.Mode == analysis.ModePDF {
			input.EssayFile = &scoring.Upload{Name: "essay.pdf", Data: data}
		} else {
			input.EssayText = string(data)
		}
		input.EssaySource = "stdin"
	case flags.essay != "":
		if opts.Mode == analysis.ModePDF {
			upload, err := scoring.LoadUpload(flags.essay)
			if err != nil {
				return input, err
			}
			input.EssayFile = &upload
		} else {
			data, err := os.ReadFile(flags.essay)
			if err != nil {
				return input, fmt.Errorf("read essay: %w", err)
			}
			input.EssayText = string(data)
		}
		input.EssaySource = flags.essay
	}

	switch {
	case flags.rubricText != "":
		input.RubricText = flags.rubricText
		input.RubricSource = inlineSource
	case flags.rubric == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input, fmt.Errorf("read rubric from stdin: %w", err)
		}
		input.RubricText = string(data)
		input.RubricSource = "stdin"
	case flags.rubric != "":
		if strings.EqualFold(filepath.Ext(flags.rubric), ".pdf") {
			if opts.RubricFlow != analysis.FlowID {
				return input, usageErrorf("PDF rubrics are parsed by the service; use --flow id")
			}
			upload, err := scoring.LoadUpload(flags.rubric)
			if err != nil {
				return input, err
			}
			input.RubricFile = &upload
		} else {
			data, err := os.ReadFile(flags.rubric)
			if err != nil {
				return input, fmt.Errorf("read rubric: %w", err)
			}
			input.RubricText = string(data)
		}
		input.RubricSource = flags.rubric
	}
	return input, nil
}

// readTextArg reads a file path argument, or stdin for "-" or no argument.
func readTextArg(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}
