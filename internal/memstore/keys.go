package memstore

import (
	"path"
	"sort"

	"github.com/cosmez/reapi-go/internal/resp"
)

func execDel(_ *Store, d *db, args []string) resp.RedisValue {
	deleted := 0
	for _, key := range args {
		if _, ok := d.data[key]; ok {
			delete(d.data, key)
			deleted++
		}
	}
	return integer(deleted)
}

func execExists(_ *Store, d *db, args []string) resp.RedisValue {
	count := 0
	for _, key := range args {
		if _, ok := d.data[key]; ok {
			count++
		}
	}
	return integer(count)
}

// Handle the TYPE command.
// It returns the type of the specified key.
func execType(_ *Store, d *db, args []string) resp.RedisValue {
	v, ok := d.data[args[0]]
	if !ok {
		return resp.RedisString{Value: "none"}
	}
	switch v.(type) {
	case []byte:
		return resp.RedisString{Value: "string"}
	case hashValue:
		return resp.RedisString{Value: "hash"}
	case setValue:
		return resp.RedisString{Value: "set"}
	case *listValue:
		return resp.RedisString{Value: "list"}
	}
	return resp.RedisString{Value: "none"}
}

// execKeys lists keys matching a glob pattern, sorted.
func execKeys(_ *Store, d *db, args []string) resp.RedisValue {
	pattern := args[0]
	keys := make([]string, 0, len(d.data))
	for key := range d.data {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	values := make([]resp.RedisValue, len(keys))
	for i, key := range keys {
		values[i] = bulk([]byte(key))
	}
	return resp.RedisArray{Values: values}
}

// Handle the RENAME command.
// RENAME key newkey
func execRename(_ *Store, d *db, args []string) resp.RedisValue {
	v, ok := d.data[args[0]]
	if !ok {
		return resp.RedisError{Value: "ERR no such key"}
	}
	delete(d.data, args[0])
	d.data[args[1]] = v
	return replyOK
}

func init() {
	registerCommand("DEL", execDel, -2)
	registerCommand("EXISTS", execExists, -2)
	registerCommand("TYPE", execType, 2)
	registerCommand("KEYS", execKeys, 2)
	registerCommand("RENAME", execRename, 3)
}
