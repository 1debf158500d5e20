// Package memstore is an embedded, in-process multi-database key/value store
// that answers a subset of Redis commands with reply values. It backs the
// gateway's memory backend.
package memstore

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cosmez/reapi-go/internal/resp"
)

// Error replies shared by the command implementations.
var (
	errWrongType   = resp.RedisError{Value: "WRONGTYPE Operation against a key holding the wrong kind of value"}
	errNotInteger  = resp.RedisError{Value: "ERR value is not an integer or out of range"}
	errSyntax      = resp.RedisError{Value: "ERR syntax error"}
	errOverflow    = resp.RedisError{Value: "ERR increment or decrement would overflow"}
	errOutOfRange  = resp.RedisError{Value: "ERR DB index is out of range"}
	errInvalidDB   = resp.RedisError{Value: "ERR invalid DB index"}
	replyOK        = resp.RedisString{Value: "OK"}
	replyNullBulk  = resp.RedisNull{}
	replyZero      = resp.RedisInteger{IntValue: 0}
	replyOne       = resp.RedisInteger{IntValue: 1}
	replyEmptyList = resp.RedisArray{Values: []resp.RedisValue{}}
)

// db is one logical database. Values are []byte (string), hashValue,
// setValue or *listValue.
type db struct {
	index int
	data  map[string]any
}

type (
	hashValue map[string][]byte
	setValue  map[string]struct{}
	listValue struct{ items [][]byte }
)

func newDB(index int) *db {
	return &db{index: index, data: make(map[string]any)}
}

// execFunc runs a command against d. args excludes the command name.
type execFunc func(s *Store, d *db, args []string) resp.RedisValue

type command struct {
	exec   execFunc
	argCnt int // counts the name; negative means at least -argCnt
}

var cmdTable = make(map[string]*command)

func registerCommand(name string, exec execFunc, argCnt int) {
	cmdTable[strings.ToLower(name)] = &command{
		exec:   exec,
		argCnt: argCnt,
	}
}

// Store holds a fixed number of logical databases and a current database,
// like a single client connection to a server.
type Store struct {
	mu      sync.Mutex
	dbs     []*db
	current int
}

// New returns a Store with n databases, at least one.
func New(n int) *Store {
	if n < 1 {
		n = 1
	}
	s := &Store{dbs: make([]*db, n)}
	for i := range s.dbs {
		s.dbs[i] = newDB(i)
	}
	return s
}

// Databases returns the number of logical databases.
func (s *Store) Databases() int {
	return len(s.dbs)
}

// Select switches the current database.
func (s *Store) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reply := s.selectDB(index); reply != nil {
		return fmt.Errorf("%s", reply.Value)
	}
	return nil
}

func (s *Store) selectDB(index int) *resp.RedisError {
	if index < 0 || index >= len(s.dbs) {
		return &errOutOfRange
	}
	s.current = index
	return nil
}

// Call runs one command against the current database. Unknown commands and
// bad arguments produce error replies; the error return is always nil.
func (s *Store) Call(name string, args ...string) (resp.RedisValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(name, args), nil
}

func (s *Store) exec(name string, args []string) resp.RedisValue {
	cmdName := strings.ToLower(name)
	cmd, ok := cmdTable[cmdName]
	if !ok {
		return resp.RedisError{Value: fmt.Sprintf("ERR unknown command '%s'", name)}
	}
	if !validateArgCnt(cmd.argCnt, len(args)+1) {
		return resp.RedisError{Value: fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmdName)}
	}
	return cmd.exec(s, s.dbs[s.current], args)
}

func validateArgCnt(argCnt, n int) bool {
	if argCnt >= 0 {
		return n == argCnt
	}
	return n >= -argCnt
}

// Close releases nothing; a Store lives as long as the process.
func (s *Store) Close() error {
	return nil
}

// bulk turns a stored payload into a reply.
func bulk(b []byte) resp.RedisValue {
	return resp.NewBulk(b)
}

// member turns a stored payload into a set member or map key.
func member(b []byte) resp.RedisKey {
	k, _ := resp.AsKey(resp.NewBulk(b))
	return k
}

func integer(n int) resp.RedisValue {
	return resp.RedisInteger{IntValue: int64(n)}
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
