// Package api serves the command bridge over HTTP.
//
// Each GET request path names a database and a command, for example
// /2/hgetall/user:1. The command runs through the shared executor and the
// reply is returned as {"result": ...} or {"error": "..."}.
//
// The server follows the usual lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/logging"
	"github.com/cosmez/reapi-go/internal/resp"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Executor runs one invocation. *bridge.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, inv *command.Invocation) (resp.RedisValue, error)
}

// Deps holds the dependencies required by the server.
type Deps struct {
	Addr     string // listen address, host:port
	Logger   *logging.Logger
	Executor Executor
	Metrics  *Metrics // optional; /-/metrics is 404 without it
	Version  string
}

// Server is the HTTP front of the gateway.
type Server struct {
	addr     string
	logger   *logging.Logger
	exec     Executor
	metrics  *Metrics
	version  string
	server   *http.Server
	listener net.Listener
}

// New creates a server. Nothing listens until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}

	return &Server{
		addr:    deps.Addr,
		logger:  deps.Logger,
		exec:    deps.Executor,
		metrics: deps.Metrics,
		version: deps.Version,
	}, nil
}

// Start binds the listen address and serves in the background. A bind
// failure is returned; errors after that are logged.
func (s *Server) Start(_ context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = l

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server listening", "address", l.Addr().String())
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Close shuts the server down, waiting for in-flight requests up to
// gracefulShutdownTimeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
