package output

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/cosmez/reapi-go/internal/resp"
)

// MaxDepth bounds how deeply ToJSON descends into nested replies.
const MaxDepth = 512

// ErrTooDeep is returned by ToJSON when a reply nests beyond MaxDepth.
var ErrTooDeep = errors.New("reply too deeply nested to convert")

// Object is a JSON object that keeps its keys in insertion order.
// Setting an existing key replaces its value in place.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object with room for n keys.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores v under key.
func (o *Object) Set(key string, v any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToJSON converts a reply into a value that marshals to the equivalent JSON.
// The result is built from nil, bool, int64, float64, string, []any and
// *Object.
//
// Types with no JSON counterpart become strings:
//   - non-finite doubles become "NaN", "inf" or "-inf";
//   - blobs that are not UTF-8 use a quoted, escaped rendering;
//   - verbatim strings use a debug rendering that includes the format hint;
//   - errors nested inside a collection use their message.
//
// Map keys are converted like any other value and their JSON text becomes
// the object key, so a string key "name" is stored as "\"name\"". Keys that
// render the same collide and the last value wins.
func ToJSON(v resp.RedisValue) (any, error) {
	return toJSON(v, 0)
}

func toJSON(v resp.RedisValue, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	switch val := v.(type) {
	case resp.RedisNull, resp.RedisNoReply:
		return nil, nil
	case resp.RedisBool:
		return val.BoolValue, nil
	case resp.RedisInteger:
		return val.IntValue, nil
	case resp.RedisDouble:
		return doubleValue(val.FloatValue), nil
	case resp.RedisString:
		return val.Value, nil
	case resp.RedisBulkString:
		return val.Value, nil
	case resp.RedisBigNumber:
		return val.Value, nil
	case resp.RedisBlob:
		return blobText(val.Value), nil
	case resp.RedisVerbatim:
		return val.GoString(), nil
	case resp.RedisError:
		return val.Value, nil
	case resp.RedisArray:
		return convertValues(val.Values, depth)
	case resp.RedisSet:
		return convertKeys(val.Members, depth)
	case resp.RedisOrderedSet:
		return convertKeys(val.Members, depth)
	case resp.RedisMap:
		return convertEntries(val.Entries, depth)
	case resp.RedisOrderedMap:
		return convertEntries(val.Entries, depth)
	case nil:
		return nil, errors.New("cannot convert a missing reply")
	default:
		return nil, fmt.Errorf("cannot convert reply of type %T", v)
	}
}

// doubleValue keeps finite doubles numeric and spells the others "NaN",
// "inf" and "-inf".
func doubleValue(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return f
}

// blobText renders a binary payload deterministically: as text when it is
// valid UTF-8, escaped and quoted otherwise.
func blobText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strconv.Quote(string(b))
}

func convertValues(values []resp.RedisValue, depth int) (any, error) {
	out := make([]any, len(values))
	for i, elem := range values {
		conv, err := toJSON(elem, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}

func convertKeys(keys []resp.RedisKey, depth int) (any, error) {
	out := make([]any, len(keys))
	for i, k := range keys {
		conv, err := toJSON(k, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}

func convertEntries(entries []resp.MapEntry, depth int) (any, error) {
	obj := NewObject(len(entries))
	for _, e := range entries {
		key, err := keyText(e.Key, depth+1)
		if err != nil {
			return nil, err
		}
		val, err := toJSON(e.Value, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	return obj, nil
}

// keyText turns a map key into a JSON object key: the key's JSON text, so
// the string "1" and the integer 1 stay distinct.
func keyText(k resp.RedisKey, depth int) (string, error) {
	conv, err := toJSON(k, depth)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(conv)
	if err != nil {
		return "", fmt.Errorf("cannot render map key: %w", err)
	}
	return string(b), nil
}
