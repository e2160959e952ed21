package orchestration

import (
	"strconv"
	"strings"
)

var ordinalWords = map[string]int{
	"first": 1, "one": 1,
	"second": 2, "two": 2,
	"third": 3, "three": 3,
	"fourth": 4, "four": 4,
	"fifth": 5, "five": 5,
	"sixth": 6, "six": 6,
	"seventh": 7, "seven": 7,
	"eighth": 8, "eight": 8,
	"ninth": 9, "nine": 9,
	"tenth": 10, "ten": 10,
}

// ParseOrdinal reads which occurrence the user asked for ("the second one",
// "3", "3rd"). Anything it cannot read means the first.
func ParseOrdinal(text string) int {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	for _, field := range fields {
		if n, ok := ordinalWords[field]; ok {
			return n
		}
		digits := strings.TrimRight(field, "stndrh")
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
