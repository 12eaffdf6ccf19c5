package live

import "essaylens/internal/analysis"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals that an analysis was submitted.
	EventRunStart EventKind = iota
	// EventStep delivers a request status update.
	EventStep
	// EventRunEnd signals that an analysis finished or failed.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind   EventKind
	Seq    uint64
	Input  analysis.Descriptor
	Step   analysis.StepEvent
	Result *analysis.Result
	Err    string
}
