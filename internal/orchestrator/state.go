package orchestrator

// State is a step of the discovery pipeline
type State int

const (
	StateStart State = iota
	StateResumeCheck
	StateCollectingInput
	StateClarifying
	StatePlanning
	StatePublishing
	StateDone
	StateFailedRecoverable
	StateHalted
)

var stateNames = map[State]string{
	StateStart:             "start",
	StateResumeCheck:       "resume_check",
	StateCollectingInput:   "collecting_input",
	StateClarifying:        "clarifying",
	StatePlanning:          "planning",
	StatePublishing:        "publishing",
	StateDone:              "done",
	StateFailedRecoverable: "failed_recoverable",
	StateHalted:            "halted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the pipeline stops in this state
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailedRecoverable || s == StateHalted
}
