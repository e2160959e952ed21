package orchestration

type InputStage int

const (
	FillInput InputStage = iota
	IsThisCorrect
	InputEditOptions
	FindWordToReplace
	ReplaceWordWith
	AddToAnswer
	FindWordToCapitalise
	CapitaliseWord
)

func (s InputStage) String() string {
	switch s {
	case FillInput:
		return "fill input"
	case IsThisCorrect:
		return "is this correct"
	case InputEditOptions:
		return "edit options"
	case FindWordToReplace:
		return "find word to replace"
	case ReplaceWordWith:
		return "replace word with"
	case AddToAnswer:
		return "add to answer"
	case FindWordToCapitalise:
		return "find word to capitalise"
	case CapitaliseWord:
		return "capitalise word"
	}
	return "unknown"
}

// takesFreeText reports whether anything said in the stage is content for
// the field rather than a command.
func (s InputStage) takesFreeText() bool {
	switch s {
	case FillInput, ReplaceWordWith, AddToAnswer:
		return true
	}
	return false
}

type EditOption string

const (
	EditReplaceWord    EditOption = "replace word"
	EditAddToAnswer    EditOption = "add to answer"
	EditStartAgain     EditOption = "start again"
	EditCapitaliseWord EditOption = "capitalise word"
	EditDeleteSentence EditOption = "delete sentence"
	EditAddPunctuation EditOption = "add punctuation"
)

// EditOptions is every option in matching order.
var EditOptions = []EditOption{
	EditReplaceWord,
	EditAddToAnswer,
	EditStartAgain,
	EditCapitaliseWord,
	EditDeleteSentence,
	EditAddPunctuation,
}

func (o EditOption) implemented() bool {
	return o != EditDeleteSentence && o != EditAddPunctuation
}
