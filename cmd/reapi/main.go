package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmez/reapi-go/internal/config"
	"github.com/cosmez/reapi-go/internal/logging"
)

var version = "dev" // set at build time via -ldflags "-X main.version=..."

// errLogged is returned by commands that have already logged their failure.
var errLogged = errors.New("failure already logged")

// settingFlags documents the flag of each setting key. Defaults come from
// config.Default.
var settingFlags = []struct {
	key   string
	usage string
}{
	{config.KeyHost, "Address the HTTP gateway listens on"},
	{config.KeyPort, "Port the HTTP gateway listens on"},
	{config.KeyBackend, "Backend to run commands against (redis or memory)"},
	{config.KeyRedisHost, "Redis server host"},
	{config.KeyRedisPort, "Redis server port"},
	{config.KeyRedisUser, "Redis ACL username"},
	{config.KeyRedisPassword, "Redis password"},
	{config.KeyRESP3, "Negotiate RESP3 with HELLO 3 before falling back to RESP2"},
	{config.KeyDatabases, "Number of logical databases of the memory backend"},
	{config.KeyLogLevel, "Log level (debug, info, warn, error)"},
	{config.KeyLogFormat, "Log format (text or json)"},
}

func main() {
	v := viper.New()
	cobra.OnInitialize(func() { config.InitEnv(v) })

	if err := newRootCmd(v).Execute(); err != nil {
		if !errors.Is(err, errLogged) {
			logging.Default().Error("startup failed", "error", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reapi",
		Short: "An HTTP gateway for Redis-protocol data stores",
		Long: `reapi runs data-store commands named by HTTP paths, such as
GET /2/hgetall/user:1, and returns the reply as JSON.

Settings can be given as flags, as REAPI_<FLAG> environment variables
(e.g. REAPI_REAPI_PORT=8080), in .env files, or as key/value pairs after
the subcommand. Pairs win over everything else.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	def := config.Default()
	for _, f := range settingFlags {
		rootCmd.PersistentFlags().String(config.FlagName(f.key), def.Value(f.key), f.usage)
	}

	rootCmd.AddCommand(newServeCmd(v), newReplCmd(v), newVersionCmd())
	return rootCmd
}

// loadConfig binds the command's flags to v and builds the configuration
// from them and the positional pairs.
func loadConfig(v *viper.Viper, cmd *cobra.Command, args []string) (*config.Config, []string, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, nil, err
	}
	cfg, unknown, err := config.Load(v, args)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, unknown, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reapi %s\n", version)
		},
	}
}
