package serializer

import (
	"fmt"
	"sort"
	"strings"
)

// Serializer is a payload codec. Serialize is applied to values written
// through the gateway and Deserialize to values read back.
type Serializer interface {
	Serialize([]byte) ([]byte, error)
	Deserialize([]byte) ([]byte, error)
}

var codecs = map[string]Serializer{
	"base64": base64Serializer{},
	"gzip":   gzipSerializer{},
	"snappy": snappySerializer{},
}

// Get returns a Serializer by name, case-insensitively. An unknown name is
// an error so callers can reject the request instead of passing data through.
func Get(name string) (Serializer, error) {
	if s, ok := codecs[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown serializer: %q (expected one of: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the known codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
