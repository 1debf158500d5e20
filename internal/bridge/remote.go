package bridge

import (
	"fmt"
	"strconv"

	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/conn"
	"github.com/cosmez/reapi-go/internal/logging"
	"github.com/cosmez/reapi-go/internal/resp"
)

// RemoteSession is a Session backed by one persistent connection to a
// Redis-protocol server. The connection is dialled on first use and
// dropped after any transport fault, to be dialled again by the next call.
// Failed calls are not retried.
type RemoteSession struct {
	opts conn.Options
	log  *logging.Logger
	dial func(conn.Options) (*conn.Connection, error)
	c    *conn.Connection
}

// NewRemoteSession returns a session for the server described by opts.
// Nothing is dialled until Connect or the first call.
func NewRemoteSession(opts conn.Options, log *logging.Logger) *RemoteSession {
	return &RemoteSession{
		opts: opts,
		log:  log,
		dial: conn.Connect,
	}
}

// Connect dials the server if there is no live connection.
func (s *RemoteSession) Connect() error {
	if s.c != nil {
		return nil
	}
	c, err := s.dial(s.opts)
	if err != nil {
		return err
	}
	s.c = c
	s.log.Info("connected to backend",
		"addr", s.opts.Addr(),
		"protocol", c.Protocol,
		"version", c.Version(),
	)
	return nil
}

// Select issues SELECT db.
func (s *RemoteSession) Select(db int) error {
	v, err := s.Call("SELECT", strconv.Itoa(db))
	if err != nil {
		return err
	}
	if errReply, ok := v.(resp.RedisError); ok {
		return fmt.Errorf("%s", errReply.Value)
	}
	return nil
}

// Call sends one command over the connection, dialling first if needed.
func (s *RemoteSession) Call(name string, args ...string) (resp.RedisValue, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}
	v, err := s.c.Do(append([]string{name}, args...)...)
	if err != nil {
		s.drop(err)
		return nil, err
	}
	return v, nil
}

// ServerCommands lists the commands the server reports through COMMAND.
func (s *RemoteSession) ServerCommands() ([]command.ServerCommand, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}
	cmds, err := s.c.FetchServerCommands()
	if err != nil {
		s.drop(err)
		return nil, err
	}
	return cmds, nil
}

func (s *RemoteSession) drop(cause error) {
	s.log.Warn("dropping backend connection", "addr", s.opts.Addr(), "error", cause)
	s.c.Close()
	s.c = nil
}

// Close closes the connection if one is open.
func (s *RemoteSession) Close() error {
	if s.c == nil {
		return nil
	}
	err := s.c.Close()
	s.c = nil
	return err
}
