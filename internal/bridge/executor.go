// Package bridge runs command invocations against the single shared backend
// session.
package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/logging"
	"github.com/cosmez/reapi-go/internal/output"
	"github.com/cosmez/reapi-go/internal/resp"
	"github.com/cosmez/reapi-go/internal/serializer"
)

// unknownDB marks the session's database as not known, forcing a SELECT
// before the next command.
const unknownDB = -1

// Session is a connection-like backend context. Implementations need not
// be safe for concurrent use; the Executor serializes access.
type Session interface {
	// Select switches the session to logical database db.
	Select(db int) error
	// Call runs one command. A backend error reply is returned as a
	// resp.RedisError value; a non-nil error means the session failed.
	Call(name string, args ...string) (resp.RedisValue, error)
	Close() error
}

// Observer is told the outcome of every executed command.
type Observer interface {
	Observe(name string, outcome Kind, elapsed time.Duration)
}

// Executor performs select-then-invoke as one critical section.
type Executor struct {
	mu       sync.Mutex
	session  Session
	current  int
	log      *logging.Logger
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver reports each command outcome to o.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor returns an Executor over s.
func NewExecutor(s Session, log *logging.Logger, opts ...Option) *Executor {
	e := &Executor{
		session: s,
		current: unknownDB,
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs inv and returns the backend reply. Failures are returned as
// *Failure. ctx is only consulted before the session lock is taken; once a
// command has started it runs to completion.
func (e *Executor) Execute(ctx context.Context, inv *command.Invocation) (resp.RedisValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFailure(InternalFailure, err, "request cancelled: %v", err)
	}
	if inv == nil || inv.Name == "" {
		return nil, newFailure(MalformedPath, command.ErrMalformedPath, "%v", command.ErrMalformedPath)
	}

	var codec serializer.Serializer
	if inv.Codec != "" {
		var err error
		if codec, err = serializer.Get(inv.Codec); err != nil {
			return nil, newFailure(MalformedPath, err, "%v", err)
		}
	}
	args, err := inv.EncodedArgs()
	if err != nil {
		return nil, newFailure(MalformedPath, err, "%v", err)
	}

	v, elapsed, err := e.locked(inv.DB, inv.Name, args)

	if e.observer != nil {
		outcome := Success
		if err != nil {
			outcome = KindOf(err)
		}
		e.observer.Observe(inv.Name, outcome, elapsed)
	}
	if err != nil {
		return nil, err
	}

	if codec != nil {
		v = output.DecodeValue(v, codec)
	}
	return v, nil
}

// locked runs execute under e.mu. A panicking session leaves the session
// state unknown; the lock is released and the panic continues.
func (e *Executor) locked(db int, name string, args []string) (v resp.RedisValue, elapsed time.Duration, err error) {
	e.mu.Lock()
	start := time.Now()
	defer func() {
		elapsed = time.Since(start)
		if r := recover(); r != nil {
			e.current = unknownDB
			e.mu.Unlock()
			panic(r)
		}
		e.mu.Unlock()
	}()
	v, err = e.execute(db, name, args)
	return v, elapsed, err
}

// execute must be called with e.mu held.
func (e *Executor) execute(db int, name string, args []string) (resp.RedisValue, error) {
	if db != e.current {
		if err := e.session.Select(db); err != nil {
			e.current = unknownDB
			e.log.Warn("select failed", "db", db, "error", err)
			return nil, newFailure(DBSelectFailure, err, "failed to select database %d", db)
		}
		e.current = db
	}

	e.log.Debug("command", "db", db, "name", name, "args", args)

	v, err := e.session.Call(name, args...)
	if err != nil || changesDB(name) {
		e.current = unknownDB
	}
	if err != nil {
		e.log.Error("command failed", "db", db, "name", name, "error", err)
		return nil, newFailure(InternalFailure, err, "%v", err)
	}

	if errReply, ok := v.(resp.RedisError); ok {
		return nil, newFailure(CommandFailure, errors.New(errReply.Value), "%s", errReply.Value)
	}
	return v, nil
}

// changesDB reports whether a command may leave the session on another
// database than the one the executor selected.
func changesDB(name string) bool {
	switch strings.ToUpper(name) {
	case "SELECT", "HELLO", "RESET":
		return true
	}
	return false
}

// Close closes the underlying session.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = unknownDB
	return e.session.Close()
}
