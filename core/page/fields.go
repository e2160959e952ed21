package page

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordMatches returns the case-insensitive occurrences of word that are not
// part of a longer word. regexp's \b is ASCII only, so accented letters are
// checked by hand.
func wordMatches(value, word string) [][]int {
	var matches [][]int
	for _, loc := range regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word)).FindAllStringIndex(value, -1) {
		before, _ := utf8.DecodeLastRuneInString(value[:loc[0]])
		after, _ := utf8.DecodeRuneInString(value[loc[1]:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		matches = append(matches, loc)
	}
	return matches
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == '_' || r == '\''
}

// FindOccurrences counts whole-word, case-insensitive occurrences of word.
func FindOccurrences(value, word string) int {
	word = strings.TrimSpace(word)
	if word == "" {
		return 0
	}
	return len(wordMatches(value, word))
}

// FirstOccurrence returns the first whole-word, case-insensitive match of
// word as it is written in value.
func FirstOccurrence(value, word string) (string, bool) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", false
	}
	matches := wordMatches(value, word)
	if len(matches) == 0 {
		return "", false
	}
	return value[matches[0][0]:matches[0][1]], true
}

// CapitaliseNth upper-cases the first letter of the nth (1-based) whole-word
// occurrence of word. Any other occurrence is left alone, and an n outside
// the range of occurrences returns value unchanged.
func CapitaliseNth(value, word string, n int) string {
	word = strings.TrimSpace(word)
	if word == "" || n < 1 {
		return value
	}

	matches := wordMatches(value, word)
	if n > len(matches) {
		return value
	}

	start := matches[n-1][0]
	r, size := utf8.DecodeRuneInString(value[start:])
	return value[:start] + string(unicode.ToUpper(r)) + value[start+size:]
}

// ReplaceFirstWord replaces the first whole-word, case-insensitive occurrence
// of word.
func ReplaceFirstWord(value, word, replacement string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return value
	}
	matches := wordMatches(value, word)
	if len(matches) == 0 {
		return value
	}
	return value[:matches[0][0]] + replacement + value[matches[0][1]:]
}

// ReplaceFirst replaces the first literal substring occurrence of old, even
// inside a longer word.
func ReplaceFirst(value, old, replacement string) string {
	if old == "" {
		return value
	}
	return strings.Replace(value, old, replacement, 1)
}

// AppendWord appends addition separated by a single space.
func AppendWord(value, addition string) string {
	addition = strings.TrimSpace(addition)
	switch {
	case addition == "":
		return value
	case value == "":
		return addition
	default:
		return value + " " + addition
	}
}

func ClearField(ctx context.Context, p Page, id string) error {
	return p.SetValue(ctx, id, "")
}

func FillField(ctx context.Context, p Page, id, text string) error {
	return p.SetValue(ctx, id, text)
}

func AddToField(ctx context.Context, p Page, id, text string) error {
	value, err := p.Value(ctx, id)
	if err != nil {
		return err
	}
	return p.SetValue(ctx, id, AppendWord(value, text))
}

func ReplaceInField(ctx context.Context, p Page, id, old, replacement string) error {
	value, err := p.Value(ctx, id)
	if err != nil {
		return err
	}
	return p.SetValue(ctx, id, ReplaceFirstWord(value, old, replacement))
}

func CapitaliseInField(ctx context.Context, p Page, id, word string, n int) error {
	value, err := p.Value(ctx, id)
	if err != nil {
		return err
	}
	return p.SetValue(ctx, id, CapitaliseNth(value, word, n))
}

func CountInField(ctx context.Context, p Page, id, word string) (int, error) {
	value, err := p.Value(ctx, id)
	if err != nil {
		return 0, err
	}
	return FindOccurrences(value, word), nil
}
