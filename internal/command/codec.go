package command

import (
	"fmt"
	"strings"

	"github.com/cosmez/reapi-go/internal/serializer"
)

// EncodedArgs returns the arguments to send to the backend. When a codec is
// set, the value argument of SET is serialized with it; every other argument
// is sent as given.
func (inv *Invocation) EncodedArgs() ([]string, error) {
	if inv.Codec == "" || !strings.EqualFold(inv.Name, "SET") || len(inv.Args) < 2 {
		return inv.Args, nil
	}

	codec, err := serializer.Get(inv.Codec)
	if err != nil {
		return nil, fmt.Errorf("failed to get serializer %q: %w", inv.Codec, err)
	}
	encoded, err := codec.Serialize([]byte(inv.Args[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize value: %w", err)
	}

	args := make([]string, len(inv.Args))
	copy(args, inv.Args)
	args[1] = string(encoded)
	return args, nil
}
