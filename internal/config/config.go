// Package config holds the gateway settings and the ways they are supplied:
// positional key/value pairs, command line flags, REAPI_* environment
// variables and .env files.
package config

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Recognized setting keys, in the form used by positional pairs.
const (
	KeyHost          = "reapi_host"
	KeyPort          = "reapi_port"
	KeyBackend       = "backend"
	KeyRedisHost     = "redis_host"
	KeyRedisPort     = "redis_port"
	KeyRedisUser     = "redis_user"
	KeyRedisPassword = "redis_password"
	KeyRESP3         = "resp3"
	KeyDatabases     = "databases"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

// Keys lists every recognized key in banner order.
var Keys = []string{
	KeyHost, KeyPort, KeyBackend,
	KeyRedisHost, KeyRedisPort, KeyRedisUser, KeyRedisPassword, KeyRESP3,
	KeyDatabases, KeyLogLevel, KeyLogFormat,
}

// Config is the complete gateway configuration.
type Config struct {
	Host      string
	Port      int
	Backend   string
	Redis     RedisConfig
	Databases int // logical databases of the memory backend
	Logging   LoggingConfig
}

// RedisConfig describes the backend server of the redis backend.
type RedisConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	RESP3    bool // try HELLO 3 before falling back to RESP2
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output string // stdout or stderr
}

// Default returns the configuration used when nothing is supplied.
func Default() *Config {
	return &Config{
		Host:    "127.0.0.1",
		Port:    9098,
		Backend: BackendRedis,
		Redis: RedisConfig{
			Host:  "127.0.0.1",
			Port:  6379,
			RESP3: true,
		},
		Databases: 16,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RedisAddr is the backend server address.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// FlagName maps a setting key to its flag and viper name, e.g.
// reapi_host -> reapi-host. The environment variable is REAPI_REAPI_HOST.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// ParsePairs reads a flat sequence of key/value arguments. A repeated key
// keeps its last value. An odd number of arguments is an error.
func ParsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return nil, fmt.Errorf("missing value for key %q", args[i])
		}
		pairs[args[i]] = args[i+1]
	}
	return pairs, nil
}

// Set assigns one setting by key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case KeyHost:
		c.Host = value
	case KeyPort:
		c.Port, err = parsePort(value)
	case KeyBackend:
		c.Backend = strings.ToLower(value)
	case KeyRedisHost:
		c.Redis.Host = value
	case KeyRedisPort:
		c.Redis.Port, err = parsePort(value)
	case KeyRedisUser:
		c.Redis.User = value
	case KeyRedisPassword:
		c.Redis.Password = value
	case KeyRESP3:
		c.Redis.RESP3, err = strconv.ParseBool(value)
	case KeyDatabases:
		c.Databases, err = strconv.Atoi(value)
	case KeyLogLevel:
		c.Logging.Level = value
	case KeyLogFormat:
		c.Logging.Format = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// Value returns one setting by key in the form Set accepts, or "" for an
// unknown key.
func (c *Config) Value(key string) string {
	switch key {
	case KeyHost:
		return c.Host
	case KeyPort:
		return strconv.Itoa(c.Port)
	case KeyBackend:
		return c.Backend
	case KeyRedisHost:
		return c.Redis.Host
	case KeyRedisPort:
		return strconv.Itoa(c.Redis.Port)
	case KeyRedisUser:
		return c.Redis.User
	case KeyRedisPassword:
		return c.Redis.Password
	case KeyRESP3:
		return strconv.FormatBool(c.Redis.RESP3)
	case KeyDatabases:
		return strconv.Itoa(c.Databases)
	case KeyLogLevel:
		return c.Logging.Level
	case KeyLogFormat:
		return c.Logging.Format
	}
	return ""
}

// Validate checks settings that cannot be checked one at a time.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid backend %q (expected %s or %s)", c.Backend, BackendRedis, BackendMemory)
	}
	if c.Databases < 1 {
		return fmt.Errorf("databases must be at least 1, got %d", c.Databases)
	}
	return nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port out of range")
	}
	return port, nil
}

// InitEnv loads .env files and makes v read REAPI_* environment variables.
func InitEnv(v *viper.Viper) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix("reapi")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load builds the configuration. Values set through v (flags or
// environment) are applied first and positional pairs override them.
// Pair keys that are not recognized are returned so the caller can warn.
func Load(v *viper.Viper, args []string) (*Config, []string, error) {
	pairs, err := ParsePairs(args)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	if v != nil {
		for _, key := range Keys {
			name := FlagName(key)
			if !v.IsSet(name) {
				continue
			}
			if err := cfg.Set(key, v.GetString(name)); err != nil {
				return nil, nil, err
			}
		}
	}

	var unknown []string
	for key, value := range pairs {
		if !isKnown(key) {
			unknown = append(unknown, key)
			continue
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, nil, err
		}
	}
	sort.Strings(unknown)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, unknown, nil
}

func isKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// String renders the configuration for the startup banner. The password is
// masked.
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("HTTP Gateway")
	addField("Listen Address", c.Addr())

	addSection("Backend")
	addField("Type", c.Backend)
	if c.Backend == BackendMemory {
		addField("Databases", strconv.Itoa(c.Databases))
	} else {
		addField("Server", c.RedisAddr())
		addField("User", orDash(c.Redis.User))
		if c.Redis.Password != "" {
			addField("Password", "********")
		} else {
			addField("Password", "-")
		}
		addField("RESP3", strconv.FormatBool(c.Redis.RESP3))
	}

	addSection("Logging")
	addField("Log Level", c.Logging.Level)
	addField("Log Format", c.Logging.Format)

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
