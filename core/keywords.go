package orchestration

import (
	"regexp"
	"strings"
)

var (
	affirmativeResponses = []string{"yes", "yeah", "yup", "yep", "sure", "absolutely", "of course", "right", "correct", "definitely", "uh-huh", "you bet", "totally", "for sure"}
	negativeResponses    = []string{"no", "nope", "nah", "not really", "incorrect", "wrong", "negative", "absolutely not", "certainly not", "no way", "uh-uh", "nuh-uh", "no chance", "not correct", "not right", "isn't correct", "isn't right"}
)

type Confirmation int

const (
	ConfirmationNone Confirmation = iota
	ConfirmationAffirmative
	ConfirmationNegative
)

type Keyword string

const (
	KeywordNone   Keyword = ""
	KeywordNext   Keyword = "next"
	KeywordCancel Keyword = "cancel"
)

type span struct{ start, end int }

func (s span) within(other span) bool {
	return other.start <= s.start && s.end <= other.end && other.end-other.start > s.end-s.start
}

func phrasePattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}'-])` + regexp.QuoteMeta(phrase) + `($|[^\p{L}\p{N}'-])`)
}

func findPhrases(text string, phrases []string) []span {
	var found []span
	for _, phrase := range phrases {
		for _, m := range phrasePattern(phrase).FindAllStringSubmatchIndex(text, -1) {
			// m[3] is the end of the leading boundary, m[4] the start of the
			// trailing one
			found = append(found, span{start: m[3], end: m[4]})
		}
	}
	return found
}

func outside(spans, others []span) []span {
	kept := spans[:0:0]
	for _, s := range spans {
		contained := false
		for _, o := range others {
			if s.within(o) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, s)
		}
	}
	return kept
}

// MatchConfirmation classifies an answer to "is this correct?". A phrase
// that only appears inside a longer phrase of the other kind does not count,
// so "absolutely not" is negative. When both kinds still match the answer is
// affirmative.
func MatchConfirmation(text string) Confirmation {
	text = strings.ToLower(text)
	affirmative := findPhrases(text, affirmativeResponses)
	negative := findPhrases(text, negativeResponses)

	affirmative, negative = outside(affirmative, negative), outside(negative, affirmative)
	switch {
	case len(affirmative) > 0:
		return ConfirmationAffirmative
	case len(negative) > 0:
		return ConfirmationNegative
	}
	return ConfirmationNone
}

// MatchEditOption returns the first option, in [EditOptions] order, that is
// contained in text.
func MatchEditOption(text string) (EditOption, bool) {
	// transcripts may come back with US spelling
	text = strings.ReplaceAll(strings.ToLower(text), "capitaliz", "capitalis")
	for _, option := range EditOptions {
		if strings.Contains(text, string(option)) {
			return option, true
		}
	}
	return "", false
}

// MatchKeyword finds a spoken "cancel" or "next". Cancel wins when both are
// said.
func MatchKeyword(text string) Keyword {
	text = strings.ToLower(text)
	for _, keyword := range []Keyword{KeywordCancel, KeywordNext} {
		if len(findPhrases(text, []string{string(keyword)})) > 0 {
			return keyword
		}
	}
	return KeywordNone
}

// cleanUtterance drops the punctuation recognizers add around a single
// spoken word or phrase.
func cleanUtterance(text string) string {
	return strings.Trim(strings.TrimSpace(text), ".,!?;: \"")
}
