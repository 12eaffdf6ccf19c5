package analysis

import "essaylens/internal/scoring"

// Phase is the lifecycle position of a session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailure    Phase = "failure"
)

// Step names one request in an analysis plan.
type Step string

const (
	StepStructure      Step = "structure"
	StepRegisterRubric Step = "register_rubric"
	StepScore          Step = "score"
)

// State is the single source of truth for a session.
//
// Seq increases on every Submit and Reset. Completions carrying an older Seq
// belong to a superseded run and are ignored.
type State struct {
	EssayText  string
	RubricText string
	EssayFile  *scoring.Upload
	RubricFile *scoring.Upload

	Phase  Phase
	Seq    uint64
	Step   Step
	Result *Result
	Err    error
}

// Input returns the user input held in the state.
func (s State) Input() Input {
	return Input{
		EssayText:  s.EssayText,
		EssayFile:  s.EssayFile,
		RubricText: s.RubricText,
		RubricFile: s.RubricFile,
	}
}

// Busy reports whether a run is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseSubmitting
}

// Action is an input to Reduce.
type Action interface {
	isAction()
}

type SetEssayText struct{ Text string }
type SetRubricText struct{ Text string }
type AttachEssayFile struct{ File scoring.Upload }
type AttachRubricFile struct{ File scoring.Upload }
type ClearFiles struct{}

// Submit starts a new run and supersedes any in-flight one.
type Submit struct{}

// Progress records the step the run with Seq is executing.
type Progress struct {
	Seq  uint64
	Step Step
}

// Succeed completes the run with Seq.
type Succeed struct {
	Seq    uint64
	Result Result
}

// Fail ends the run with Seq with an error.
type Fail struct {
	Seq uint64
	Err error
}

// Reset returns to Idle, keeping the inputs and dropping any in-flight run.
type Reset struct{}

func (SetEssayText) isAction()     {}
func (SetRubricText) isAction()    {}
func (AttachEssayFile) isAction()  {}
func (AttachRubricFile) isAction() {}
func (ClearFiles) isAction()       {}
func (Submit) isAction()           {}
func (Progress) isAction()         {}
func (Succeed) isAction()          {}
func (Fail) isAction()             {}
func (Reset) isAction()            {}

// Reduce applies an action to a state and returns the next state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetEssayText:
		state.EssayText = a.Text
	case SetRubricText:
		state.RubricText = a.Text
	case AttachEssayFile:
		file := a.File
		state.EssayFile = &file
	case AttachRubricFile:
		file := a.File
		state.RubricFile = &file
	case ClearFiles:
		state.EssayFile = nil
		state.RubricFile = nil
	case Submit:
		state.Seq++
		state.Phase = PhaseSubmitting
		state.Step = ""
		state.Result = nil
		state.Err = nil
	case Progress:
		if state.current(a.Seq) {
			state.Step = a.Step
		}
	case Succeed:
		if state.current(a.Seq) {
			result := a.Result
			state.Phase = PhaseSuccess
			state.Step = ""
			state.Result = &result
			state.Err = nil
		}
	case Fail:
		if state.current(a.Seq) {
			state.Phase = PhaseFailure
			state.Err = a.Err
			state.Result = nil
		}
	case Reset:
		state.Seq++
		state.Phase = PhaseIdle
		state.Step = ""
		state.Result = nil
		state.Err = nil
	}
	return state
}

func (s State) current(seq uint64) bool {
	return s.Phase == PhaseSubmitting && seq == s.Seq
}
