package live

import (
	"time"

	"essaylens/internal/analysis"
)

// Reduce applies an event to the UI state. Events from a run older than the
// one on screen are dropped.
func Reduce(state State, event Event, now time.Time) State {
	if event.Seq < state.Seq {
		return state
	}
	switch event.Kind {
	case EventRunStart:
		state = State{
			Seq:       event.Seq,
			Input:     event.Input,
			Phase:     analysis.PhaseSubmitting,
			StartedAt: now,
			Runs:      state.Runs + 1,
			LastEvent: "Analyzing " + describeInput(event.Input),
		}
	case EventStep:
		if event.Seq != state.Seq {
			return state
		}
		state.Steps = applyStep(state.Steps, event.Step)
		state.LastEvent = formatStepEvent(event.Step)
	case EventRunEnd:
		if event.Seq != state.Seq {
			return state
		}
		if event.Err != "" {
			state.Phase = analysis.PhaseFailure
			state.Err = event.Err
			state.Result = nil
			state.LastEvent = "Analysis failed"
			return state
		}
		state.Phase = analysis.PhaseSuccess
		state.Result = event.Result
		state.Err = ""
		if event.Result != nil {
			state.LastEvent = "Run " + event.Result.RunID + " finished in " + formatDuration(event.Result.Duration())
		}
	}
	return state
}

// applyStep updates or appends the row for a step.
func applyStep(rows []StepRow, event analysis.StepEvent) []StepRow {
	for i := range rows {
		if rows[i].Step == event.Step {
			rows[i].Status = event.Status
			rows[i].Duration = event.Duration
			rows[i].Error = event.Error
			return rows
		}
	}
	return append(rows, StepRow{
		Step:     event.Step,
		Status:   event.Status,
		Duration: event.Duration,
		Error:    event.Error,
	})
}

func describeInput(input analysis.Descriptor) string {
	essay := input.EssaySource
	if essay == "" {
		essay = "essay"
	}
	if input.RubricSource == "" {
		return essay
	}
	return essay + " against " + input.RubricSource
}
