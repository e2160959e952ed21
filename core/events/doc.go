// Package events defines the typed signal contract shared by the playback
// controller, the input editor and their hosts.
//
// Signals are grouped by the stage of a walkthrough that raises them:
//
//   - playback.*
//   - input_confirm.*
//   - input_edit.*
//
// Semantics used across the package:
//
//   - Signals carry no payload. Anything a receiver needs is read from state
//     owned by the publisher (cursor, transcript snapshot, field value).
//   - Publishing is synchronous. Handlers run on the publisher's goroutine in
//     subscription order before Publish returns.
//   - A Bus belongs to one playback session. Nothing is process-wide.
//
// playback signals
//
//   - NextClicked (playback.next_clicked): user asked to skip to the next
//     step.
//   - CancelClicked (playback.cancel_clicked): user asked to stop playback.
//   - ReadScriptFinished (playback.read_script_finished): the playback pass
//     fully unwound and released its resources.
//
// input_confirm signals
//
//   - IsCorrect (input_confirm.is_correct): the collected value was
//     confirmed.
//   - IsNotCorrect (input_confirm.is_not_correct): the collected value was
//     rejected and edit options are offered.
//
// input_edit signals
//
//   - OptionSelected (input_edit.option_selected): an edit option was
//     recognized.
//   - WordToReplace (input_edit.word_to_replace): the word to replace was
//     found in the field.
//   - ReplaceWordWith (input_edit.replace_word_with): the replacement was
//     written.
//   - AddToInputCompleted (input_edit.add_to_input_completed): text was
//     appended to the field.
//   - FoundWordToCapitalise (input_edit.found_word_to_capitalise): the word
//     to capitalise was found in the field.
//   - CapitalisedWord (input_edit.capitalised_word): the chosen occurrence
//     was capitalised.
package events
