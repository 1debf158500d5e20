package conn

import (
	"fmt"
	"strings"

	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/resp"
)

// FetchServerCommands sends COMMAND and parses the reply into ServerCommands
// for completion. It returns nil, nil if the server refuses COMMAND.
func (c *Connection) FetchServerCommands() ([]command.ServerCommand, error) {
	response, err := c.Do("COMMAND")
	if err != nil {
		return nil, err
	}

	// Old server or restricted ACL.
	if _, ok := response.(resp.RedisError); ok {
		return nil, nil
	}

	array, ok := response.(resp.RedisArray)
	if !ok {
		return nil, fmt.Errorf("expected array for COMMAND, got %T", response)
	}

	var cmds []command.ServerCommand
	for _, entry := range array.Values {
		sc, err := parseCommandEntry(entry)
		if err != nil {
			continue
		}
		cmds = append(cmds, sc)
	}

	return cmds, nil
}

// parseCommandEntry converts one COMMAND entry into a ServerCommand. The
// entry has up to 10 elements; older servers return fewer.
func parseCommandEntry(v resp.RedisValue) (command.ServerCommand, error) {
	arr, ok := v.(resp.RedisArray)
	if !ok || len(arr.Values) < 2 {
		return command.ServerCommand{}, fmt.Errorf("expected array with >= 2 elements")
	}

	// [0] name, lowercase with "|" separating subcommands
	name := strings.ToUpper(strings.ReplaceAll(arr.Values[0].StringValue(), "|", " "))

	// [1] arity
	var arity int64
	if intVal, ok := arr.Values[1].(resp.RedisInteger); ok {
		arity = intVal.IntValue
	}

	// [6] ACL categories (7.0+)
	var aclCats []string
	if len(arr.Values) > 6 {
		aclCats = stringMembers(arr.Values[6])
	}

	// [9] subcommands (7.0+)
	var subcommands []command.ServerCommand
	if len(arr.Values) > 9 {
		if subArr, ok := arr.Values[9].(resp.RedisArray); ok {
			for _, subEntry := range subArr.Values {
				sub, err := parseCommandEntry(subEntry)
				if err != nil {
					continue
				}
				subcommands = append(subcommands, sub)
			}
		}
	}

	return command.ServerCommand{
		Name:        name,
		Arity:       arity,
		ACLCats:     aclCats,
		Subcommands: subcommands,
	}, nil
}

// stringMembers pulls the text of every element out of an array or set.
// RESP3 servers send flags and ACL categories as sets.
func stringMembers(v resp.RedisValue) []string {
	var elems []resp.RedisValue
	switch val := v.(type) {
	case resp.RedisArray:
		elems = val.Values
	case resp.RedisOrderedSet:
		for _, m := range val.Members {
			elems = append(elems, m)
		}
	case resp.RedisSet:
		for _, m := range val.Members {
			elems = append(elems, m)
		}
	default:
		return nil
	}
	strs := make([]string, 0, len(elems))
	for _, elem := range elems {
		strs = append(strs, elem.StringValue())
	}
	return strs
}

// getServerInfo reads the server section of INFO into ServerInfo.
func (c *Connection) getServerInfo() error {
	response, err := c.roundTrip("INFO", "server")
	if err != nil {
		return fmt.Errorf("failed to read INFO: %w", err)
	}

	var text string
	switch val := response.(type) {
	case resp.RedisBulkString:
		text = val.Value
	case resp.RedisVerbatim:
		text = string(val.Value)
	case resp.RedisError:
		return fmt.Errorf("INFO refused: %s", val.Value)
	default:
		return fmt.Errorf("expected bulk string for INFO, got %T", response)
	}

	c.ServerInfo = parseInfo(text)
	return nil
}

// parseInfo splits INFO text into its field:value lines.
func parseInfo(text string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(text, "\r\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			info[parts[0]] = parts[1]
		}
	}
	return info
}

// Version returns the server version reported by INFO, or "" if unknown.
func (c *Connection) Version() string {
	return c.ServerInfo["redis_version"]
}
