package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-walkthrough/core/actions"
	"github.com/koscakluka/ema-walkthrough/core/events"
	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
)

var ErrEditOptionNotImplemented = errors.New("edit option is not implemented")

// Editor lets the user fill a field by voice, confirm it and correct it.
// It is entered for each collect step and left when the step ends.
type Editor struct {
	bus        *events.Bus
	narrator   texttospeech.Narrator
	recognizer Recognizer
	page       page.Page
	evaluator  Evaluator
	onRestart  func()
	onChange   func()

	ctx    context.Context
	token  *CancellationToken
	field  string
	active bool
	stage  InputStage

	wordToReplace    string
	wordToCapitalise string
	occurrences      int

	// prompt is bumped for every prompt so a late end of an earlier prompt
	// does not restart listening
	prompt        int
	unsubscribers []func()
}

type EditorOption func(*Editor)

// WithRestartCallback is called when the user picks "start again". The
// controller replays the current step with it.
func WithRestartCallback(callback func()) EditorOption {
	return func(e *Editor) { e.onRestart = callback }
}

func WithChangeCallback(callback func()) EditorOption {
	return func(e *Editor) { e.onChange = callback }
}

// WithEditorEvaluator sets what writes the answer into the field. The
// controller shares its own so both fill paths behave the same.
func WithEditorEvaluator(evaluator Evaluator) EditorOption {
	return func(e *Editor) { e.evaluator = evaluator }
}

func NewEditor(bus *events.Bus, narrator texttospeech.Narrator, recognizer Recognizer, p page.Page, opts ...EditorOption) *Editor {
	e := &Editor{
		bus:        bus,
		narrator:   narrator,
		recognizer: recognizer,
		page:       p,
		onRestart:  func() {},
		onChange:   func() {},
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.evaluator == nil {
		e.evaluator = actions.NewDispatcher(p)
	}
	return e
}

func (e *Editor) Active() bool {
	return e.active
}

func (e *Editor) Stage() InputStage {
	return e.stage
}

func (e *Editor) Field() string {
	return e.field
}

// Enter starts editing field at [FillInput]. Anything said next is written
// into the field.
func (e *Editor) Enter(ctx context.Context, field string, token *CancellationToken) {
	e.Exit()

	e.ctx = ctx
	e.token = token
	e.field = field
	e.active = true
	e.setStage(FillInput)
	e.wordToReplace, e.wordToCapitalise, e.occurrences = "", "", 0

	e.unsubscribers = append(e.unsubscribers,
		e.bus.Subscribe(events.IsCorrect, e.Exit),
		e.bus.Subscribe(events.IsNotCorrect, e.showEditOptions),
	)
}

// Exit stops editing. Calling it when not editing does nothing.
func (e *Editor) Exit() {
	for _, unsubscribe := range e.unsubscribers {
		unsubscribe()
	}
	e.unsubscribers = nil
	e.prompt++
	if e.active {
		e.active = false
		e.onChange()
	}
}

// HandleSpeech reacts to the transcript heard in the current stage.
func (e *Editor) HandleSpeech(snapshot speechtotext.Snapshot) {
	if !e.active || e.token.IsCancelled() {
		return
	}

	final := strings.TrimSpace(snapshot.Final)
	switch e.stage {
	case FillInput:
		if final == "" {
			return
		}
		result := e.evaluator.Evaluate(e.ctx, final, script.Collect(e.field), "")
		if !result.Success {
			return
		}
		e.confirm(result.MatchedPhrase)

	case IsThisCorrect:
		switch MatchConfirmation(snapshot.Latest()) {
		case ConfirmationAffirmative:
			e.recognizer.Clear()
			e.bus.Publish(events.IsCorrect)
		case ConfirmationNegative:
			e.recognizer.Clear()
			e.bus.Publish(events.IsNotCorrect)
		}

	case InputEditOptions:
		option, ok := MatchEditOption(snapshot.Latest())
		if !ok {
			return
		}
		e.recognizer.Clear()
		e.bus.Publish(events.OptionSelected)
		e.selectOption(option)

	case FindWordToReplace:
		word := cleanUtterance(final)
		if word == "" {
			return
		}
		match, ok := e.findWord(word)
		if !ok {
			e.recognizer.Clear()
			return
		}
		e.wordToReplace = match
		e.bus.Publish(events.WordToReplace)
		e.setStage(ReplaceWordWith)
		e.say(fmt.Sprintf("Say a word or a phrase to replace %s with", match))

	case ReplaceWordWith:
		replacement := cleanUtterance(final)
		if replacement == "" {
			return
		}
		if err := page.ReplaceInField(e.ctx, e.page, e.field, e.wordToReplace, replacement); err != nil {
			e.logElementError("failed to replace word", err)
			return
		}
		e.bus.Publish(events.ReplaceWordWith)
		e.confirmCurrentValue("")

	case AddToAnswer:
		if final == "" {
			return
		}
		if err := page.AddToField(e.ctx, e.page, e.field, final); err != nil {
			e.logElementError("failed to add to field", err)
			return
		}
		e.bus.Publish(events.AddToInputCompleted)
		e.confirmCurrentValue("")

	case FindWordToCapitalise:
		word := cleanUtterance(final)
		if word == "" {
			return
		}
		count, err := page.CountInField(e.ctx, e.page, e.field, word)
		if err != nil {
			e.logElementError("failed to count word", err)
			return
		}
		if count == 0 {
			e.recognizer.Clear()
			return
		}
		e.wordToCapitalise = word
		e.occurrences = count
		e.bus.Publish(events.FoundWordToCapitalise)
		e.setStage(CapitaliseWord)
		e.say(fmt.Sprintf("There are %d of %s in your answer, which would you like to capitalise?", count, word))

	case CapitaliseWord:
		if final == "" {
			return
		}
		n := ParseOrdinal(final)
		if n > e.occurrences {
			e.recognizer.Clear()
			return
		}
		if err := page.CapitaliseInField(e.ctx, e.page, e.field, e.wordToCapitalise, n); err != nil {
			e.logElementError("failed to capitalise word", err)
			return
		}
		e.bus.Publish(events.CapitalisedWord)
		e.confirmCurrentValue(fmt.Sprintf("I have capitalised %s. ", e.wordToCapitalise))
	}
}

func (e *Editor) selectOption(option EditOption) {
	if !option.implemented() {
		err := fmt.Errorf("%w: %s", ErrEditOptionNotImplemented, option)
		logger.WarnContext(e.ctx, "edit option selected", "option", string(option), "error", err)
		e.say(fmt.Sprintf("Sorry, %s is not available yet. %s", option, editOptionsPrompt))
		return
	}

	switch option {
	case EditReplaceWord:
		e.setStage(FindWordToReplace)
		e.say("Which word would you like to replace?")
	case EditAddToAnswer:
		e.setStage(AddToAnswer)
		e.say("What would you like to add to this input?")
	case EditCapitaliseWord:
		e.setStage(FindWordToCapitalise)
		e.say("Which word would you like to capitalise?")
	case EditStartAgain:
		if err := page.ClearField(e.ctx, e.page, e.field); err != nil {
			e.logElementError("failed to clear field", err)
		}
		e.setStage(FillInput)
		e.onRestart()
	}
}

var editOptionsPrompt = fmt.Sprintf("Choose an action from the following options: %s... %s... %s... %s... %s",
	EditReplaceWord, EditAddToAnswer, EditStartAgain, EditCapitaliseWord, EditAddPunctuation)

func (e *Editor) showEditOptions() {
	if !e.active {
		return
	}
	e.setStage(InputEditOptions)
	e.say(editOptionsPrompt)
}

func (e *Editor) confirm(value string) {
	e.setStage(IsThisCorrect)
	e.say(fmt.Sprintf("You inputted %s, is this correct?", value))
}

func (e *Editor) confirmCurrentValue(preamble string) {
	value, err := e.page.Value(e.ctx, e.field)
	if err != nil {
		e.logElementError("failed to read field", err)
		return
	}
	e.setStage(IsThisCorrect)
	e.say(fmt.Sprintf("%sYou inputted %s, is this correct?", preamble, value))
}

// findWord returns the first whole-word match of word in the field, written
// the way the field has it.
func (e *Editor) findWord(word string) (string, bool) {
	value, err := e.page.Value(e.ctx, e.field)
	if err != nil {
		e.logElementError("failed to read field", err)
		return "", false
	}
	return page.FirstOccurrence(value, word)
}

// say narrates a prompt without listening to itself, then listens for the
// answer. The transcript is cleared before listening stops so the stop
// update does not carry the answer just handled.
func (e *Editor) say(text string) {
	e.prompt++
	prompt := e.prompt

	e.recognizer.Clear()
	if err := e.recognizer.Stop(); err != nil {
		logger.WarnContext(e.ctx, "failed to stop listening", "error", err)
	}

	listen := func() {
		if prompt != e.prompt || !e.active || e.token.IsCancelled() {
			return
		}
		if err := e.recognizer.Start(); err != nil {
			logger.WarnContext(e.ctx, "failed to start listening", "error", err)
		}
	}

	if err := e.narrator.Speak(e.ctx, text,
		texttospeech.WithEndCallback(listen),
		texttospeech.WithErrorCallback(func(error) { listen() }),
	); err != nil {
		logger.WarnContext(e.ctx, "failed to narrate prompt", "error", err)
		listen()
	}
}

func (e *Editor) setStage(stage InputStage) {
	e.stage = stage
	e.onChange()
}

func (e *Editor) logElementError(msg string, err error) {
	if errors.Is(err, page.ErrMissingElement) {
		logger.DebugContext(e.ctx, msg, "field", e.field, "error", err)
		return
	}
	logger.WarnContext(e.ctx, msg, "field", e.field, "error", err)
}
