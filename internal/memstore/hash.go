package memstore

import (
	"github.com/cosmez/reapi-go/internal/resp"
)

// getHash returns the hash stored at key, nil if the key is missing.
func (d *db) getHash(key string) (h hashValue, wrongType bool) {
	v, ok := d.data[key]
	if !ok {
		return nil, false
	}
	h, ok = v.(hashValue)
	return h, !ok
}

// execHSet handles HSET key field value [field value ...].
func execHSet(_ *Store, d *db, args []string) resp.RedisValue {
	if len(args)%2 != 1 {
		return resp.RedisError{Value: "ERR wrong number of arguments for 'hset' command"}
	}
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	if h == nil {
		h = make(hashValue)
		d.data[args[0]] = h
	}
	added := 0
	for i := 1; i < len(args); i += 2 {
		if _, ok := h[args[i]]; !ok {
			added++
		}
		h[args[i]] = []byte(args[i+1])
	}
	return integer(added)
}

func execHGet(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	b, ok := h[args[1]]
	if !ok {
		return replyNullBulk
	}
	return bulk(b)
}

func execHDel(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	deleted := 0
	for _, field := range args[1:] {
		if _, ok := h[field]; ok {
			delete(h, field)
			deleted++
		}
	}
	if h != nil && len(h) == 0 {
		delete(d.data, args[0])
	}
	return integer(deleted)
}

func execHExists(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	if _, ok := h[args[1]]; ok {
		return replyOne
	}
	return replyZero
}

func execHLen(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	return integer(len(h))
}

// execHGetAll returns the fields as an unordered map.
func execHGetAll(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	entries := make([]resp.MapEntry, 0, len(h))
	for field, value := range h {
		entries = append(entries, resp.MapEntry{Key: member([]byte(field)), Value: bulk(value)})
	}
	return resp.RedisMap{Entries: entries}
}

func execHKeys(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	values := make([]resp.RedisValue, 0, len(h))
	for field := range h {
		values = append(values, bulk([]byte(field)))
	}
	return resp.RedisArray{Values: values}
}

func execHVals(_ *Store, d *db, args []string) resp.RedisValue {
	h, wrongType := d.getHash(args[0])
	if wrongType {
		return errWrongType
	}
	values := make([]resp.RedisValue, 0, len(h))
	for _, value := range h {
		values = append(values, bulk(value))
	}
	return resp.RedisArray{Values: values}
}

func init() {
	registerCommand("HSET", execHSet, -4)
	registerCommand("HGET", execHGet, 3)
	registerCommand("HDEL", execHDel, -3)
	registerCommand("HEXISTS", execHExists, 3)
	registerCommand("HLEN", execHLen, 2)
	registerCommand("HGETALL", execHGetAll, 2)
	registerCommand("HKEYS", execHKeys, 2)
	registerCommand("HVALS", execHVals, 2)
}
