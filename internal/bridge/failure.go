package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies why a command did not produce a reply.
type Kind int

const (
	// Success means the command produced a reply.
	Success Kind = iota
	// MalformedPath means the request could not be turned into an invocation.
	MalformedPath
	// DBSelectFailure means the target database could not be selected.
	DBSelectFailure
	// CommandFailure means the backend answered with an error reply.
	CommandFailure
	// InternalFailure means the gateway or its connection failed.
	InternalFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "ok"
	case MalformedPath:
		return "malformed_path"
	case DBSelectFailure:
		return "db_select_failure"
	case CommandFailure:
		return "command_failure"
	case InternalFailure:
		return "internal_failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Failure is the error returned by Executor.Execute.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind Kind, err error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err, InternalFailure for errors that are not
// a *Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return InternalFailure
}
