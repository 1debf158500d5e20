package resp

import (
	"fmt"
	"strconv"
)

// ValueType represents the kind of a reply value.
//
// The set of kinds is closed: every reply a backend can produce maps onto
// exactly one of these, and consumers are expected to switch over all of them.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeNull
	TypeNoReply
	TypeBool
	TypeInteger
	TypeDouble
	TypeString
	TypeBulkString
	TypeBlob
	TypeBigNumber
	TypeVerbatim
	TypeError
	TypeArray
	TypeSet
	TypeMap
	TypeOrderedMap
	TypeOrderedSet
)

var typeNames = [...]string{
	TypeNone:       "none",
	TypeNull:       "null",
	TypeNoReply:    "no-reply",
	TypeBool:       "boolean",
	TypeInteger:    "integer",
	TypeDouble:     "double",
	TypeString:     "simple-string",
	TypeBulkString: "bulk-string",
	TypeBlob:       "blob",
	TypeBigNumber:  "big-number",
	TypeVerbatim:   "verbatim-string",
	TypeError:      "error",
	TypeArray:      "array",
	TypeSet:        "set",
	TypeMap:        "map",
	TypeOrderedMap: "ordered-map",
	TypeOrderedSet: "ordered-set",
}

func (t ValueType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "ValueType(" + strconv.Itoa(int(t)) + ")"
}

// RedisValue is the interface that all reply value types implement.
type RedisValue interface {
	Type() ValueType
	StringValue() string
}

// RedisKey is the subset of reply values that may appear as a map key or a
// set member: integers, strings, blobs and booleans. Collections never do.
type RedisKey interface {
	RedisValue
	redisKey()
}

// RedisNull represents a RESP2 null bulk string or array, or a RESP3 null (_).
type RedisNull struct{}

func (n RedisNull) Type() ValueType     { return TypeNull }
func (n RedisNull) StringValue() string { return "" }

// RedisNoReply is produced by backends that defer their answer (e.g. a
// blocked client). It carries no data.
type RedisNoReply struct{}

func (n RedisNoReply) Type() ValueType     { return TypeNoReply }
func (n RedisNoReply) StringValue() string { return "" }

// RedisBool represents a RESP3 boolean (#t / #f).
type RedisBool struct {
	BoolValue bool
}

func (b RedisBool) Type() ValueType     { return TypeBool }
func (b RedisBool) StringValue() string { return strconv.FormatBool(b.BoolValue) }
func (b RedisBool) redisKey()           {}

// RedisInteger represents a RESP Integer (starts with :).
type RedisInteger struct {
	IntValue int64
}

func (i RedisInteger) Type() ValueType { return TypeInteger }
func (i RedisInteger) StringValue() string {
	return strconv.FormatInt(i.IntValue, 10)
}
func (i RedisInteger) redisKey() {}

// RedisDouble represents a RESP3 double (starts with ,).
type RedisDouble struct {
	FloatValue float64
}

func (d RedisDouble) Type() ValueType { return TypeDouble }
func (d RedisDouble) StringValue() string {
	return strconv.FormatFloat(d.FloatValue, 'g', -1, 64)
}

// RedisString represents a RESP Simple String (starts with +).
type RedisString struct {
	Value string
}

func (s RedisString) Type() ValueType     { return TypeString }
func (s RedisString) StringValue() string { return s.Value }
func (s RedisString) redisKey()           {}

// RedisBulkString represents a RESP Bulk String (starts with $) whose
// payload is valid UTF-8.
type RedisBulkString struct {
	Value string
}

func (b RedisBulkString) Type() ValueType     { return TypeBulkString }
func (b RedisBulkString) StringValue() string { return b.Value }
func (b RedisBulkString) redisKey()           {}

// RedisBlob represents a bulk payload that is not valid UTF-8.
type RedisBlob struct {
	Value []byte
}

func (b RedisBlob) Type() ValueType     { return TypeBlob }
func (b RedisBlob) StringValue() string { return string(b.Value) }
func (b RedisBlob) redisKey()           {}

// RedisBigNumber represents a RESP3 big number (starts with (). The digits
// are kept as text since they may not fit any Go integer type.
type RedisBigNumber struct {
	Value string
}

func (n RedisBigNumber) Type() ValueType     { return TypeBigNumber }
func (n RedisBigNumber) StringValue() string { return n.Value }

// RedisVerbatim represents a RESP3 verbatim string (starts with =).
// Format is the three character encoding hint, e.g. "txt" or "mkd".
type RedisVerbatim struct {
	Format string
	Value  []byte
}

func (v RedisVerbatim) Type() ValueType     { return TypeVerbatim }
func (v RedisVerbatim) StringValue() string { return string(v.Value) }

// GoString renders the verbatim string with its format hint. It is the
// textual form the JSON converter emits.
func (v RedisVerbatim) GoString() string {
	return fmt.Sprintf("VerbatimString(%s, %q)", v.Format, v.Value)
}

// RedisError represents a RESP Error (starts with -) or a RESP3 blob error (!).
type RedisError struct {
	Value string
}

func (e RedisError) Type() ValueType     { return TypeError }
func (e RedisError) StringValue() string { return e.Value }

// RedisArray represents a RESP Array (*) or a RESP3 push (>).
type RedisArray struct {
	Values []RedisValue
}

func (a RedisArray) Type() ValueType     { return TypeArray }
func (a RedisArray) StringValue() string { return "" }

// MapEntry is a single key/value pair of a map reply.
type MapEntry struct {
	Key   RedisKey
	Value RedisValue
}

// RedisMap is a map reply whose iteration order carries no meaning.
type RedisMap struct {
	Entries []MapEntry
}

func (m RedisMap) Type() ValueType     { return TypeMap }
func (m RedisMap) StringValue() string { return "" }

// RedisOrderedMap is a map reply whose entry order must be preserved.
type RedisOrderedMap struct {
	Entries []MapEntry
}

func (m RedisOrderedMap) Type() ValueType     { return TypeOrderedMap }
func (m RedisOrderedMap) StringValue() string { return "" }

// RedisSet is a set reply whose member order carries no meaning.
type RedisSet struct {
	Members []RedisKey
}

func (s RedisSet) Type() ValueType     { return TypeSet }
func (s RedisSet) StringValue() string { return "" }

// RedisOrderedSet is a set reply whose member order must be preserved.
type RedisOrderedSet struct {
	Members []RedisKey
}

func (s RedisOrderedSet) Type() ValueType     { return TypeOrderedSet }
func (s RedisOrderedSet) StringValue() string { return "" }

// AsKey reports whether v may be used as a map key or set member.
func AsKey(v RedisValue) (RedisKey, bool) {
	k, ok := v.(RedisKey)
	return k, ok
}
