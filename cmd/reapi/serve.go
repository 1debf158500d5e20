package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmez/reapi-go/internal/api"
	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/config"
	"github.com/cosmez/reapi-go/internal/conn"
	"github.com/cosmez/reapi-go/internal/logging"
	"github.com/cosmez/reapi-go/internal/memstore"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [key value ...]",
		Short: "Start the HTTP gateway",
		Long: `Start the HTTP gateway. Trailing arguments are key/value pairs, e.g.

  reapi serve reapi_host 0.0.0.0 reapi_port 8080 backend memory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, unknown, err := loadConfig(v, cmd, args)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Logging, version)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runServe(ctx, cfg, log, args, unknown); err != nil {
				log.Error("gateway failed", "error", err)
				return errLogged
			}
			return nil
		},
	}
}

// runServe starts the gateway and blocks until ctx is done.
func runServe(ctx context.Context, cfg *config.Config, log *logging.Logger, args, unknown []string) error {
	log.Info("starting reapi", "args", args)
	for _, key := range unknown {
		log.Warn("ignoring unknown setting", "key", key)
	}
	fmt.Fprintln(os.Stdout, cfg.String())

	registry, err := command.NewRegistry()
	if err != nil {
		return fmt.Errorf("loading command docs: %w", err)
	}

	metrics := api.NewMetrics(registry)
	exec := bridge.NewExecutor(openBackend(cfg, log, registry), log, bridge.WithObserver(metrics))
	defer exec.Close()

	srv, err := api.New(api.Deps{
		Addr:     cfg.Addr(),
		Logger:   log,
		Executor: exec,
		Metrics:  metrics,
		Version:  version,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down")
	return srv.Close()
}

// openBackend creates the configured backend session. A redis backend that
// cannot be reached yet is returned anyway; it dials again on first use.
// Commands the server reports are merged into reg.
func openBackend(cfg *config.Config, log *logging.Logger, reg *command.Registry) bridge.Session {
	if cfg.Backend == config.BackendMemory {
		log.Info("using in-memory backend", "databases", cfg.Databases)
		return memstore.New(cfg.Databases)
	}

	s := bridge.NewRemoteSession(conn.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		User:     cfg.Redis.User,
		Password: cfg.Redis.Password,
		RESP3:    cfg.Redis.RESP3,
	}, log)
	if err := s.Connect(); err != nil {
		log.Warn("backend unreachable, will retry on first command", "addr", cfg.RedisAddr(), "error", err)
		return s
	}

	cmds, err := s.ServerCommands()
	if err != nil {
		log.Warn("could not fetch server commands", "error", err)
		return s
	}
	if cmds != nil {
		reg.MergeServerCommands(cmds)
	}
	return s
}
