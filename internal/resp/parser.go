package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxDepth bounds how deeply aggregate replies may nest. Replies nested
// deeper than this are rejected with ErrTooDeep instead of growing the stack.
const MaxDepth = 512

// ErrTooDeep is returned when a reply nests beyond MaxDepth.
var ErrTooDeep = errors.New("reply nesting exceeds maximum depth")

// ParseValue reads a single RESP2 or RESP3 value from the provided reader.
func ParseValue(r *bufio.Reader) (RedisValue, error) {
	return parseValue(r, 0)
}

// ParseReply reads the reply to a command. RESP3 push frames that arrive
// ahead of it are out-of-band messages and are discarded.
func ParseReply(r *bufio.Reader) (RedisValue, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] != '>' {
			return parseValue(r, 0)
		}
		if _, err := parseValue(r, 0); err != nil {
			return nil, fmt.Errorf("failed to skip push frame: %w", err)
		}
	}
}

func parseValue(r *bufio.Reader, depth int) (RedisValue, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	// Read the first byte to determine the type
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch b {
	case '+':
		return parseSimpleString(r)
	case '-':
		return parseError(r)
	case ':':
		return parseInteger(r)
	case '$':
		return parseBulkString(r)
	case '*', '>':
		return parseArray(r, depth)
	case '_':
		return parseNull(r)
	case '#':
		return parseBool(r)
	case ',':
		return parseDouble(r)
	case '(':
		return parseBigNumber(r)
	case '!':
		return parseBlobError(r)
	case '=':
		return parseVerbatim(r)
	case '%':
		return parseMap(r, depth)
	case '~':
		return parseSet(r, depth)
	case '|':
		// Attributes carry out-of-band metadata and precede the real reply.
		if err := skipAttributes(r, depth); err != nil {
			return nil, err
		}
		return parseValue(r, depth)
	default:
		return nil, fmt.Errorf("unknown RESP type byte: %q", b)
	}
}

// NewBulk wraps a binary-safe payload as a bulk string when it is valid
// UTF-8, or as a blob otherwise.
func NewBulk(payload []byte) RedisValue {
	if utf8.Valid(payload) {
		return RedisBulkString{Value: string(payload)}
	}
	return RedisBlob{Value: payload}
}

// readLine reads until \n and strips the trailing \r\n.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	// Strip \r\n
	return strings.TrimSuffix(line, "\r\n"), nil
}

// readLength reads a length header. It returns -1 for the null marker.
func readLength(r *bufio.Reader, what string) (int, error) {
	line, err := readLine(r)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", what, err)
	}

	// Negative lengths other than -1 are invalid
	if n < -1 {
		return 0, fmt.Errorf("invalid %s: %d", what, n)
	}
	return n, nil
}

// readPayload reads exactly n bytes followed by CRLF, binary safe.
func readPayload(r *bufio.Reader, n int) ([]byte, error) {
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read bulk payload: %w", err)
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return nil, fmt.Errorf("expected CRLF after bulk payload, got %q", buf[n:])
	}
	return buf[:n], nil
}

func parseSimpleString(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	return RedisString{Value: line}, nil
}

func parseError(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	return RedisError{Value: line}, nil
}

func parseInteger(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	val, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer format: %w", err)
	}
	return RedisInteger{IntValue: val}, nil
}

func parseBulkString(r *bufio.Reader) (RedisValue, error) {
	length, err := readLength(r, "bulk string length")
	if err != nil {
		return nil, err
	}

	// A length of -1 indicates a Null Bulk String
	if length == -1 {
		return RedisNull{}, nil
	}

	payload, err := readPayload(r, length)
	if err != nil {
		return nil, err
	}
	return NewBulk(payload), nil
}

func parseNull(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if line != "" {
		return nil, fmt.Errorf("unexpected payload after null: %q", line)
	}
	return RedisNull{}, nil
}

func parseBool(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	switch line {
	case "t":
		return RedisBool{BoolValue: true}, nil
	case "f":
		return RedisBool{BoolValue: false}, nil
	default:
		return nil, fmt.Errorf("invalid boolean: %q", line)
	}
}

func parseDouble(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	// ParseFloat accepts the inf, -inf and nan spellings used on the wire.
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid double format: %w", err)
	}
	return RedisDouble{FloatValue: val}, nil
}

func parseBigNumber(r *bufio.Reader) (RedisValue, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	digits := strings.TrimPrefix(line, "-")
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return nil, fmt.Errorf("invalid big number: %q", line)
	}
	return RedisBigNumber{Value: line}, nil
}

func parseBlobError(r *bufio.Reader) (RedisValue, error) {
	length, err := readLength(r, "blob error length")
	if err != nil {
		return nil, err
	}
	if length == -1 {
		return RedisNull{}, nil
	}
	payload, err := readPayload(r, length)
	if err != nil {
		return nil, err
	}
	return RedisError{Value: string(payload)}, nil
}

func parseVerbatim(r *bufio.Reader) (RedisValue, error) {
	length, err := readLength(r, "verbatim string length")
	if err != nil {
		return nil, err
	}
	if length == -1 {
		return RedisNull{}, nil
	}
	payload, err := readPayload(r, length)
	if err != nil {
		return nil, err
	}
	// Payload is "xxx:<data>" where xxx is the format hint
	if len(payload) < 4 || payload[3] != ':' {
		return nil, fmt.Errorf("invalid verbatim string header: %q", payload)
	}
	return RedisVerbatim{Format: string(payload[:3]), Value: payload[4:]}, nil
}

func parseArray(r *bufio.Reader, depth int) (RedisValue, error) {
	count, err := readLength(r, "array count")
	if err != nil {
		return nil, err
	}

	// A count of -1 indicates a Null Array
	if count == -1 {
		return RedisNull{}, nil
	}

	// Parse each element
	values := make([]RedisValue, count)
	for i := 0; i < count; i++ {
		val, err := parseValue(r, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse array element %d: %w", i, err)
		}
		values[i] = val
	}

	return RedisArray{Values: values}, nil
}

// parseKey parses a value that must be usable as a map key or set member.
func parseKey(r *bufio.Reader, depth int) (RedisKey, error) {
	val, err := parseValue(r, depth)
	if err != nil {
		return nil, err
	}
	key, ok := AsKey(val)
	if !ok {
		return nil, fmt.Errorf("%s reply cannot be used as a key", val.Type())
	}
	return key, nil
}

func parseMap(r *bufio.Reader, depth int) (RedisValue, error) {
	count, err := readLength(r, "map count")
	if err != nil {
		return nil, err
	}
	if count == -1 {
		return RedisNull{}, nil
	}

	entries := make([]MapEntry, count)
	for i := 0; i < count; i++ {
		key, err := parseKey(r, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse map key %d: %w", i, err)
		}
		val, err := parseValue(r, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse map value %d: %w", i, err)
		}
		entries[i] = MapEntry{Key: key, Value: val}
	}

	// The server already chose an order; keep it.
	return RedisOrderedMap{Entries: entries}, nil
}

func parseSet(r *bufio.Reader, depth int) (RedisValue, error) {
	count, err := readLength(r, "set count")
	if err != nil {
		return nil, err
	}
	if count == -1 {
		return RedisNull{}, nil
	}

	members := make([]RedisKey, count)
	for i := 0; i < count; i++ {
		key, err := parseKey(r, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse set member %d: %w", i, err)
		}
		members[i] = key
	}

	return RedisOrderedSet{Members: members}, nil
}

func skipAttributes(r *bufio.Reader, depth int) error {
	count, err := readLength(r, "attribute count")
	if err != nil {
		return err
	}
	for i := 0; i < count*2; i++ {
		if _, err := parseValue(r, depth+1); err != nil {
			return fmt.Errorf("failed to parse attribute %d: %w", i/2, err)
		}
	}
	return nil
}
