package events

// Signal names a payload-free notification published on a [Bus].
type Signal string

func (s Signal) String() string { return string(s) }

const (
	// NextClicked asks playback to advance past the current step.
	NextClicked Signal = "playback.next_clicked"
	// CancelClicked asks playback to stop.
	CancelClicked Signal = "playback.cancel_clicked"
	// ReadScriptFinished reports that a playback pass has fully unwound.
	ReadScriptFinished Signal = "playback.read_script_finished"

	// IsCorrect confirms the collected field value.
	IsCorrect Signal = "input_confirm.is_correct"
	// IsNotCorrect rejects the collected field value.
	IsNotCorrect Signal = "input_confirm.is_not_correct"

	// OptionSelected reports that an edit option was recognized.
	OptionSelected Signal = "input_edit.option_selected"
	// WordToReplace reports that the word to replace exists in the field.
	WordToReplace Signal = "input_edit.word_to_replace"
	// ReplaceWordWith reports that the replacement was written.
	ReplaceWordWith Signal = "input_edit.replace_word_with"
	// AddToInputCompleted reports that text was appended to the field.
	AddToInputCompleted Signal = "input_edit.add_to_input_completed"
	// FoundWordToCapitalise reports that the word to capitalise exists in
	// the field.
	FoundWordToCapitalise Signal = "input_edit.found_word_to_capitalise"
	// CapitalisedWord reports that an occurrence was capitalised.
	CapitalisedWord Signal = "input_edit.capitalised_word"
)

// Signals lists every canonical signal in declaration order.
func Signals() []Signal {
	return []Signal{
		NextClicked,
		CancelClicked,
		IsCorrect,
		IsNotCorrect,
		WordToReplace,
		ReplaceWordWith,
		OptionSelected,
		AddToInputCompleted,
		FoundWordToCapitalise,
		CapitalisedWord,
		ReadScriptFinished,
	}
}
