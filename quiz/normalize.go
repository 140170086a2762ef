package quiz

import (
	"strconv"
	"strings"
	"unicode"
)

// NormalizeAnswer converts a raw submitted answer token into a zero-based
// option index. A token is either a single letter ("A".."Z", case
// insensitive, offset from 'A') or a non-negative integer (taken as an
// already-zero-based index; numeric tokens are deliberately not re-offset,
// matching the advertised reply grammar).
//
// ok is false when the token is empty, is neither a single letter nor a
// number, or resolves outside [0, optionCount). That is a normal
// "no answer provided" outcome for the grading engine, not a fault.
func NormalizeAnswer(token string, optionCount int) (index int, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	runes := []rune(token)
	if len(runes) == 1 && unicode.IsLetter(runes[0]) {
		index = int(unicode.ToUpper(runes[0]) - 'A')
	} else if n, err := strconv.Atoi(token); err == nil && n >= 0 {
		index = n
	} else {
		return 0, false
	}

	if index < 0 || index >= optionCount {
		return 0, false
	}
	return index, true
}
