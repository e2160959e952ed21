package orchestration

import "github.com/koscakluka/ema-walkthrough/core/speechtotext"

// Status is what a host shows about a playback session.
type Status struct {
	State  State
	Cursor Cursor
	// StepText is the narration of the current step
	StepText string
	// TargetPhrase is what the current step is listening for, if anything
	TargetPhrase string
	Editing      bool
	Stage        InputStage
	Transcript   speechtotext.Snapshot
	Listening    bool
	// Detected is set for a moment after "next" or "cancel" was heard
	Detected Keyword
}
