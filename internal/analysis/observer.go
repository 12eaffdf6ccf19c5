package analysis

import "time"

// StepStatus is the state of one request in the plan.
type StepStatus string

const (
	StepStarted  StepStatus = "started"
	StepFinished StepStatus = "finished"
	StepFailed   StepStatus = "failed"
)

// StepEvent reports progress of a single request.
type StepEvent struct {
	Seq       uint64
	Step      Step
	Status    StepStatus
	Duration  time.Duration
	Error     string
	EmittedAt time.Time
}

// Observer receives session lifecycle events for UI or logging.
// Callbacks run on the goroutine executing the run and must not block.
type Observer interface {
	// OnRunStart signals that run seq was submitted.
	OnRunStart(seq uint64, input Descriptor)
	// OnStep delivers a request status update.
	OnStep(event StepEvent)
	// OnRunEnd signals completion; exactly one of result and err is set.
	OnRunEnd(seq uint64, result *Result, err error)
}
