package orchestration

type State int

const (
	StateIdle State = iota
	StateSpeaking
	StateAwaitingAction
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateAwaitingAction:
		return "awaiting action"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Cursor points at the step being played.
type Cursor struct {
	StepID    int
	Playing   bool
	Cancelled bool
}
