package live

import (
	"time"

	"essaylens/internal/analysis"
)

// StepRow holds UI state for one request of the plan.
type StepRow struct {
	Step     analysis.Step
	Status   analysis.StepStatus
	Duration time.Duration
	Error    string
}

// State captures the live UI state for the most recent analysis.
type State struct {
	Seq       uint64
	Input     analysis.Descriptor
	Phase     analysis.Phase
	StartedAt time.Time
	Steps     []StepRow
	Result    *analysis.Result
	Err       string
	Runs      int
	LastEvent string
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool {
	return s.Phase == analysis.PhaseSubmitting
}
