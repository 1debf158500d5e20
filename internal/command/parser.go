package command

import (
	"fmt"
	"strings"

	"github.com/cosmez/reapi-go/internal/serializer"
)

// Parse takes a raw console line, extracts the `#:codec` modifier, tokenizes
// the rest and looks up documentation for the command.
//
// The registry is optional; pass nil to skip the documentation lookup.
func Parse(input string, reg *Registry) (*ParsedCommand, error) {
	if strings.TrimSpace(input) == "" {
		return &ParsedCommand{}, nil
	}

	parsed := &ParsedCommand{
		Text: input,
	}

	// 1. Detect and strip `#:codec` suffix
	if codecIdx := strings.LastIndex(input, "#:"); codecIdx != -1 {
		parsed.Modifier = strings.TrimSpace(input[codecIdx+2:])
		input = input[:codecIdx]
		if _, err := serializer.Get(parsed.Modifier); err != nil {
			return nil, fmt.Errorf("failed to get serializer %q: %w", parsed.Modifier, err)
		}
	}

	// 2. Tokenize remaining text
	tokens := tokenize(input)
	if len(tokens) == 0 {
		return parsed, nil
	}

	// 3. Extract Name and Args
	parsed.Name = strings.ToUpper(tokens[0])
	if len(tokens) > 1 {
		parsed.Args = tokens[1:]
	}

	// 4. Look up documentation
	if reg != nil {
		parsed.Doc = reg.Lookup(tokens)
	}

	return parsed, nil
}
