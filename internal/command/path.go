package command

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedPath is returned when a request path does not name a command.
var ErrMalformedPath = errors.New("malformed command path")

// ParsePath turns a request path such as "2/set/foo/bar" into an Invocation.
//
// A leading segment made only of digits is always taken as the database
// index, even when it is the only segment. So "5" fails with
// ErrMalformedPath rather than running a command named "5".
//
// Segments are percent-decoded individually, so "%2F" may be used to pass a
// slash inside an argument.
func ParsePath(path string) (*Invocation, error) {
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")

	inv := &Invocation{}
	if db, ok := parseDBSegment(segments[0]); ok {
		inv.DB = db
		segments = segments[1:]
	}

	if len(segments) == 0 || segments[0] == "" {
		return nil, fmt.Errorf("%w: no command given", ErrMalformedPath)
	}

	decoded := make([]string, len(segments))
	for i, seg := range segments {
		s, err := url.PathUnescape(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", ErrMalformedPath, i, err)
		}
		decoded[i] = s
	}

	inv.Name = decoded[0]
	if len(decoded) > 1 {
		inv.Args = decoded[1:]
	}
	return inv, nil
}

// parseDBSegment reports whether seg is a database index. A digit-only
// segment too large for an int is still an index; it is clamped so the
// backend rejects it at selection time.
func parseDBSegment(seg string) (int, bool) {
	if seg == "" || strings.TrimLeft(seg, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.ParseUint(seg, 10, 64)
	if err != nil || n > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(n), true
}
