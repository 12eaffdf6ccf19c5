package analysis

import (
	"errors"
	"fmt"
	"strings"

	"essaylens/internal/rubric"
	"essaylens/internal/scoring"
)

// Sentinel errors for missing input, checked before any request is sent.
var (
	ErrNoEssay    = errors.New("no essay provided")
	ErrNoCriteria = errors.New("no rubric criteria provided")
)

// Mode selects how the essay is sent to the scoring service.
type Mode string

const (
	ModeText Mode = "text"
	ModePDF  Mode = "pdf"
)

// RubricFlow selects whether criteria travel with each request or are
// registered once and referenced by id.
type RubricFlow string

const (
	FlowList RubricFlow = "list"
	FlowID   RubricFlow = "id"
)

// RubricFormat selects the local rubric parser.
type RubricFormat string

const (
	// FormatLines parses one criterion per line with optional grade headings.
	FormatLines RubricFormat = "lines"
	// FormatPoints extracts "Name (N points)" rows from extracted PDF text.
	FormatPoints RubricFormat = "points"
)

// Options parameterize a session.
type Options struct {
	Mode         Mode
	RubricFlow   RubricFlow
	RubricFormat RubricFormat
	Policy       Policy
}

// WithDefaults fills unset option fields.
func (o Options) WithDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeText
	}
	if o.RubricFlow == "" {
		o.RubricFlow = FlowList
	}
	if o.RubricFormat == "" {
		o.RubricFormat = FormatLines
	}
	if o.Policy == "" {
		o.Policy = PolicyFull
	}
	return o
}

// Validate reports unsupported option values.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeText, ModePDF:
	default:
		return fmt.Errorf("unsupported mode %q", o.Mode)
	}
	switch o.RubricFlow {
	case FlowList, FlowID:
	default:
		return fmt.Errorf("unsupported rubric flow %q", o.RubricFlow)
	}
	switch o.RubricFormat {
	case FormatLines, FormatPoints:
	default:
		return fmt.Errorf("unsupported rubric format %q", o.RubricFormat)
	}
	switch o.Policy {
	case PolicyFull, PolicyAny:
	default:
		return fmt.Errorf("unsupported policy %q", o.Policy)
	}
	return nil
}

// Input is everything the user supplied for one analysis.
type Input struct {
	EssayText  string
	EssayFile  *scoring.Upload
	RubricText string
	RubricFile *scoring.Upload

	// EssaySource and RubricSource describe where the input came from
	// (a path or "inline") for reports.
	EssaySource  string
	RubricSource string
}

// Rubric parses the rubric text with the configured parser.
func (in Input) Rubric(opts Options) rubric.Parsed {
	if opts.RubricFormat == FormatPoints {
		return rubric.ParsePoints(in.RubricText)
	}
	return rubric.Parse(in.RubricText)
}

// Validate checks that an essay and criteria are present for the options.
func (in Input) Validate(opts Options) error {
	opts = opts.WithDefaults()
	if opts.Mode == ModePDF {
		if in.EssayFile == nil || len(in.EssayFile.Data) == 0 {
			return ErrNoEssay
		}
	} else if strings.TrimSpace(in.EssayText) == "" {
		return ErrNoEssay
	}

	if opts.RubricFlow == FlowID {
		if in.RubricFile != nil && len(in.RubricFile.Data) > 0 {
			return nil
		}
		if strings.TrimSpace(in.RubricText) == "" {
			return ErrNoCriteria
		}
		return nil
	}
	if len(in.Rubric(opts).Criteria()) == 0 {
		return ErrNoCriteria
	}
	return nil
}
