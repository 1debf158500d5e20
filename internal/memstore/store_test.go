package memstore

import (
	"reflect"
	"sort"
	"testing"

	"github.com/cosmez/reapi-go/internal/resp"
)

type call struct {
	args     []string
	expected resp.RedisValue
}

func run(t *testing.T, s *Store, calls []call) {
	t.Helper()
	for _, c := range calls {
		got, err := s.Call(c.args[0], c.args[1:]...)
		if err != nil {
			t.Fatalf("Call(%v) error = %v", c.args, err)
		}
		if !reflect.DeepEqual(got, c.expected) {
			t.Errorf("Call(%v) = %#v, want %#v", c.args, got, c.expected)
		}
	}
}

func bulkString(s string) resp.RedisValue { return resp.RedisBulkString{Value: s} }
func intReply(n int64) resp.RedisValue    { return resp.RedisInteger{IntValue: n} }

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		calls []call
	}{
		{
			name: "Server",
			calls: []call{
				{[]string{"PING"}, resp.RedisString{Value: "PONG"}},
				{[]string{"ping", "hi"}, bulkString("hi")},
				{[]string{"ECHO", "hello"}, bulkString("hello")},
				{[]string{"DBSIZE"}, intReply(0)},
			},
		},
		{
			name: "Strings",
			calls: []call{
				{[]string{"GET", "k"}, resp.RedisNull{}},
				{[]string{"SET", "k", "v"}, replyOK},
				{[]string{"GET", "k"}, bulkString("v")},
				{[]string{"SET", "k", "w", "NX"}, resp.RedisNull{}},
				{[]string{"SET", "k", "w", "XX", "GET"}, bulkString("v")},
				{[]string{"SET", "k", "x", "EX", "10"}, replyOK},
				{[]string{"SET", "k", "x", "EX"}, errSyntax},
				{[]string{"SET", "k", "x", "NX", "XX"}, errSyntax},
				{[]string{"SETNX", "k", "y"}, intReply(0)},
				{[]string{"GETSET", "k", "z"}, bulkString("x")},
				{[]string{"APPEND", "k", "zz"}, intReply(3)},
				{[]string{"STRLEN", "k"}, intReply(3)},
				{[]string{"MSET", "a", "1", "b", "2"}, replyOK},
				{[]string{"MGET", "a", "missing", "b"}, resp.RedisArray{Values: []resp.RedisValue{
					bulkString("1"), resp.RedisNull{}, bulkString("2"),
				}}},
			},
		},
		{
			name: "Counters",
			calls: []call{
				{[]string{"INCR", "n"}, intReply(1)},
				{[]string{"INCRBY", "n", "41"}, intReply(42)},
				{[]string{"DECR", "n"}, intReply(41)},
				{[]string{"DECRBY", "n", "1"}, intReply(40)},
				{[]string{"INCRBY", "n", "x"}, errNotInteger},
				{[]string{"SET", "s", "abc"}, replyOK},
				{[]string{"INCR", "s"}, errNotInteger},
				{[]string{"SET", "big", "9223372036854775807"}, replyOK},
				{[]string{"INCR", "big"}, errOverflow},
			},
		},
		{
			name: "Keys",
			calls: []call{
				{[]string{"MSET", "user:1", "a", "user:2", "b", "other", "c"}, replyOK},
				{[]string{"KEYS", "user:*"}, resp.RedisArray{Values: []resp.RedisValue{bulkString("user:1"), bulkString("user:2")}}},
				{[]string{"EXISTS", "user:1", "other", "nope"}, intReply(2)},
				{[]string{"TYPE", "other"}, resp.RedisString{Value: "string"}},
				{[]string{"TYPE", "nope"}, resp.RedisString{Value: "none"}},
				{[]string{"RENAME", "other", "renamed"}, replyOK},
				{[]string{"RENAME", "nope", "x"}, resp.RedisError{Value: "ERR no such key"}},
				{[]string{"DEL", "user:1", "user:2", "nope"}, intReply(2)},
				{[]string{"DBSIZE"}, intReply(1)},
				{[]string{"FLUSHDB"}, replyOK},
				{[]string{"DBSIZE"}, intReply(0)},
			},
		},
		{
			name: "Hash",
			calls: []call{
				{[]string{"HSET", "h", "f1", "v1", "f2", "v2"}, intReply(2)},
				{[]string{"HSET", "h", "f1", "v3"}, intReply(0)},
				{[]string{"HSET", "h", "f1"}, resp.RedisError{Value: "ERR wrong number of arguments for 'hset' command"}},
				{[]string{"HGET", "h", "f1"}, bulkString("v3")},
				{[]string{"HGET", "h", "nope"}, resp.RedisNull{}},
				{[]string{"HEXISTS", "h", "f2"}, intReply(1)},
				{[]string{"HLEN", "h"}, intReply(2)},
				{[]string{"HDEL", "h", "f1", "f2"}, intReply(2)},
				{[]string{"EXISTS", "h"}, intReply(0)},
				{[]string{"TYPE", "h"}, resp.RedisString{Value: "none"}},
			},
		},
		{
			name: "Set",
			calls: []call{
				{[]string{"SADD", "s", "a", "b", "a"}, intReply(2)},
				{[]string{"SISMEMBER", "s", "a"}, intReply(1)},
				{[]string{"SISMEMBER", "s", "z"}, intReply(0)},
				{[]string{"SCARD", "s"}, intReply(2)},
				{[]string{"TYPE", "s"}, resp.RedisString{Value: "set"}},
				{[]string{"SREM", "s", "a", "z"}, intReply(1)},
			},
		},
		{
			name: "List",
			calls: []call{
				{[]string{"RPUSH", "l", "b", "c"}, intReply(2)},
				{[]string{"LPUSH", "l", "a"}, intReply(3)},
				{[]string{"LRANGE", "l", "0", "-1"}, resp.RedisArray{Values: []resp.RedisValue{bulkString("a"), bulkString("b"), bulkString("c")}}},
				{[]string{"LRANGE", "l", "-2", "10"}, resp.RedisArray{Values: []resp.RedisValue{bulkString("b"), bulkString("c")}}},
				{[]string{"LRANGE", "l", "5", "10"}, replyEmptyList},
				{[]string{"LRANGE", "missing", "0", "-1"}, replyEmptyList},
				{[]string{"LPOP", "l"}, bulkString("a")},
				{[]string{"RPOP", "l"}, bulkString("c")},
				{[]string{"LLEN", "l"}, intReply(1)},
				{[]string{"TYPE", "l"}, resp.RedisString{Value: "list"}},
			},
		},
		{
			name: "Wrong Type",
			calls: []call{
				{[]string{"SET", "k", "v"}, replyOK},
				{[]string{"HGET", "k", "f"}, errWrongType},
				{[]string{"SADD", "k", "m"}, errWrongType},
				{[]string{"LPUSH", "k", "m"}, errWrongType},
				{[]string{"HSET", "h", "f", "v"}, intReply(1)},
				{[]string{"GET", "h"}, errWrongType},
				{[]string{"INCR", "h"}, errWrongType},
			},
		},
		{
			name: "Arity And Unknown",
			calls: []call{
				{[]string{"GET"}, resp.RedisError{Value: "ERR wrong number of arguments for 'get' command"}},
				{[]string{"GET", "a", "b"}, resp.RedisError{Value: "ERR wrong number of arguments for 'get' command"}},
				{[]string{"DEL"}, resp.RedisError{Value: "ERR wrong number of arguments for 'del' command"}},
				{[]string{"NOPE", "x"}, resp.RedisError{Value: "ERR unknown command 'NOPE'"}},
			},
		},
		{
			name: "Binary Values",
			calls: []call{
				{[]string{"SET", "bin", "\xff\xfe"}, replyOK},
				{[]string{"GET", "bin"}, resp.RedisBlob{Value: []byte{0xff, 0xfe}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, New(16), tt.calls)
		})
	}
}

func TestSelect(t *testing.T) {
	s := New(4)

	if err := s.Select(3); err != nil {
		t.Fatalf("Select(3) error = %v", err)
	}
	if err := s.Select(4); err == nil || err.Error() != "ERR DB index is out of range" {
		t.Errorf("Select(4) error = %v", err)
	}
	if err := s.Select(-1); err == nil {
		t.Error("Select(-1) expected error")
	}

	// The failed selects left database 3 current.
	run(t, s, []call{
		{[]string{"SET", "k", "in3"}, replyOK},
		{[]string{"SELECT", "0"}, replyOK},
		{[]string{"GET", "k"}, resp.RedisNull{}},
		{[]string{"SELECT", "9"}, errOutOfRange},
		{[]string{"SELECT", "x"}, errInvalidDB},
		{[]string{"SELECT", "3"}, replyOK},
		{[]string{"GET", "k"}, bulkString("in3")},
		{[]string{"SWAPDB", "3", "0"}, replyOK},
		{[]string{"GET", "k"}, resp.RedisNull{}},
		{[]string{"SELECT", "0"}, replyOK},
		{[]string{"GET", "k"}, bulkString("in3")},
		{[]string{"FLUSHALL"}, replyOK},
		{[]string{"DBSIZE"}, intReply(0)},
	})
}

func TestHGetAllIsMap(t *testing.T) {
	s := New(1)
	run(t, s, []call{{[]string{"HSET", "h", "a", "1", "b", "2"}, intReply(2)}})

	v, _ := s.Call("HGETALL", "h")
	m, ok := v.(resp.RedisMap)
	if !ok {
		t.Fatalf("Expected RedisMap, got %T", v)
	}
	got := make(map[string]string)
	for _, e := range m.Entries {
		got[e.Key.StringValue()] = e.Value.StringValue()
	}
	if !reflect.DeepEqual(got, map[string]string{"a": "1", "b": "2"}) {
		t.Errorf("HGETALL = %v", got)
	}

	v, _ = s.Call("HGETALL", "missing")
	if m, ok := v.(resp.RedisMap); !ok || len(m.Entries) != 0 {
		t.Errorf("Expected empty map, got %#v", v)
	}

	v, _ = s.Call("HKEYS", "h")
	keys := stringsOf(t, v)
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("HKEYS = %v", keys)
	}
	v, _ = s.Call("HVALS", "h")
	vals := stringsOf(t, v)
	if !reflect.DeepEqual(vals, []string{"1", "2"}) {
		t.Errorf("HVALS = %v", vals)
	}
}

func TestSMembersIsSet(t *testing.T) {
	s := New(1)
	run(t, s, []call{{[]string{"SADD", "s", "x", "y", "z"}, intReply(3)}})

	v, _ := s.Call("SMEMBERS", "s")
	set, ok := v.(resp.RedisSet)
	if !ok {
		t.Fatalf("Expected RedisSet, got %T", v)
	}
	var members []string
	for _, m := range set.Members {
		members = append(members, m.StringValue())
	}
	sort.Strings(members)
	if !reflect.DeepEqual(members, []string{"x", "y", "z"}) {
		t.Errorf("SMEMBERS = %v", members)
	}
}

func stringsOf(t *testing.T, v resp.RedisValue) []string {
	t.Helper()
	arr, ok := v.(resp.RedisArray)
	if !ok {
		t.Fatalf("Expected RedisArray, got %T", v)
	}
	out := make([]string, len(arr.Values))
	for i, e := range arr.Values {
		out[i] = e.StringValue()
	}
	sort.Strings(out)
	return out
}

func TestValidateArgCnt(t *testing.T) {
	tests := []struct {
		argCnt, n int
		expected  bool
	}{
		{2, 2, true},
		{2, 3, false},
		{-2, 2, true},
		{-2, 5, true},
		{-2, 1, false},
	}
	for _, tt := range tests {
		if got := validateArgCnt(tt.argCnt, tt.n); got != tt.expected {
			t.Errorf("validateArgCnt(%d, %d) = %v, want %v", tt.argCnt, tt.n, got, tt.expected)
		}
	}
}

func TestNewMinimumOneDatabase(t *testing.T) {
	if n := New(0).Databases(); n != 1 {
		t.Errorf("Databases() = %d, want 1", n)
	}
}
