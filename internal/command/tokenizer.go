package command

import (
	"strings"
	"unicode"
)

// tokenize splits a console line into arguments. Single or double quotes
// group words, a backslash escapes the next rune, and an empty pair of
// quotes yields an empty argument.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune // 0 when outside quotes
	started := false
	escaped := false

	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			started = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			started = true
		case quote == 0 && unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}

	// An unclosed quote still ends the token at end of input
	flush()
	return tokens
}
