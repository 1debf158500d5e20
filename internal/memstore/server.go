package memstore

import (
	"strconv"

	"github.com/cosmez/reapi-go/internal/resp"
)

func execPing(_ *Store, _ *db, args []string) resp.RedisValue {
	if len(args) == 1 {
		return resp.RedisBulkString{Value: args[0]}
	}
	if len(args) > 1 {
		return resp.RedisError{Value: "ERR wrong number of arguments for 'ping' command"}
	}
	return resp.RedisString{Value: "PONG"}
}

func execEcho(_ *Store, _ *db, args []string) resp.RedisValue {
	return bulk([]byte(args[0]))
}

func execSelect(s *Store, _ *db, args []string) resp.RedisValue {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return errInvalidDB
	}
	if reply := s.selectDB(index); reply != nil {
		return *reply
	}
	return replyOK
}

func execDBSize(_ *Store, d *db, _ []string) resp.RedisValue {
	return integer(len(d.data))
}

// Handle the FLUSHDB command.
// It clears all keys from the current database.
func execFlushDB(_ *Store, d *db, _ []string) resp.RedisValue {
	d.data = make(map[string]any)
	return replyOK
}

func execFlushAll(s *Store, _ *db, _ []string) resp.RedisValue {
	for _, d := range s.dbs {
		d.data = make(map[string]any)
	}
	return replyOK
}

// execSwapDB exchanges the contents of two databases.
func execSwapDB(s *Store, _ *db, args []string) resp.RedisValue {
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil {
		return errInvalidDB
	}
	if a < 0 || a >= len(s.dbs) || b < 0 || b >= len(s.dbs) {
		return errOutOfRange
	}
	s.dbs[a].data, s.dbs[b].data = s.dbs[b].data, s.dbs[a].data
	return replyOK
}

func init() {
	registerCommand("PING", execPing, -1)
	registerCommand("ECHO", execEcho, 2)
	registerCommand("SELECT", execSelect, 2)
	registerCommand("DBSIZE", execDBSize, 1)
	registerCommand("FLUSHDB", execFlushDB, -1)
	registerCommand("FLUSHALL", execFlushAll, -1)
	registerCommand("SWAPDB", execSwapDB, 3)
}
