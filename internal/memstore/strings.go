package memstore

import (
	"math"
	"strconv"
	"strings"

	"github.com/cosmez/reapi-go/internal/resp"
)

// getString returns the string stored at key. wrongType is set when the key
// holds another kind of value.
func (d *db) getString(key string) (b []byte, exists, wrongType bool) {
	v, ok := d.data[key]
	if !ok {
		return nil, false, false
	}
	b, ok = v.([]byte)
	return b, true, !ok
}

func execGet(_ *Store, d *db, args []string) resp.RedisValue {
	b, exists, wrongType := d.getString(args[0])
	if wrongType {
		return errWrongType
	}
	if !exists {
		return replyNullBulk
	}
	return bulk(b)
}

// execSet handles SET key value [NX | XX] [GET] [EX s | PX ms | KEEPTTL].
// Keys never expire here, so expiry options are accepted and ignored.
func execSet(_ *Store, d *db, args []string) resp.RedisValue {
	key, value := args[0], []byte(args[1])

	var nx, xx, get bool
	for i := 2; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "GET":
			get = true
		case "KEEPTTL":
		case "EX", "PX", "EXAT", "PXAT":
			if i+1 >= len(args) {
				return errSyntax
			}
			if n, ok := parseInt(args[i+1]); !ok || n <= 0 {
				return resp.RedisError{Value: "ERR invalid expire time in 'set' command"}
			}
			i++
		default:
			return errSyntax
		}
	}
	if nx && xx {
		return errSyntax
	}

	old, exists, wrongType := d.getString(key)
	if get && wrongType {
		return errWrongType
	}
	if (nx && exists) || (xx && !exists) {
		if get && exists {
			return bulk(old)
		}
		return replyNullBulk
	}

	d.data[key] = value
	if get {
		if !exists {
			return replyNullBulk
		}
		return bulk(old)
	}
	return replyOK
}

func execSetNX(_ *Store, d *db, args []string) resp.RedisValue {
	if _, ok := d.data[args[0]]; ok {
		return replyZero
	}
	d.data[args[0]] = []byte(args[1])
	return replyOne
}

func execGetSet(_ *Store, d *db, args []string) resp.RedisValue {
	old, exists, wrongType := d.getString(args[0])
	if wrongType {
		return errWrongType
	}
	d.data[args[0]] = []byte(args[1])
	if !exists {
		return replyNullBulk
	}
	return bulk(old)
}

func execStrLen(_ *Store, d *db, args []string) resp.RedisValue {
	b, _, wrongType := d.getString(args[0])
	if wrongType {
		return errWrongType
	}
	return integer(len(b))
}

func execAppend(_ *Store, d *db, args []string) resp.RedisValue {
	b, _, wrongType := d.getString(args[0])
	if wrongType {
		return errWrongType
	}
	out := make([]byte, 0, len(b)+len(args[1]))
	out = append(append(out, b...), args[1]...)
	d.data[args[0]] = out
	return integer(len(out))
}

func incrBy(d *db, key string, delta int64) resp.RedisValue {
	b, exists, wrongType := d.getString(key)
	if wrongType {
		return errWrongType
	}
	var current int64
	if exists {
		n, ok := parseInt(string(b))
		if !ok {
			return errNotInteger
		}
		current = n
	}
	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return errOverflow
	}
	current += delta
	d.data[key] = []byte(strconv.FormatInt(current, 10))
	return resp.RedisInteger{IntValue: current}
}

func execIncr(_ *Store, d *db, args []string) resp.RedisValue {
	return incrBy(d, args[0], 1)
}

func execDecr(_ *Store, d *db, args []string) resp.RedisValue {
	return incrBy(d, args[0], -1)
}

func execIncrBy(_ *Store, d *db, args []string) resp.RedisValue {
	delta, ok := parseInt(args[1])
	if !ok {
		return errNotInteger
	}
	return incrBy(d, args[0], delta)
}

func execDecrBy(_ *Store, d *db, args []string) resp.RedisValue {
	delta, ok := parseInt(args[1])
	if !ok || delta == math.MinInt64 {
		return errNotInteger
	}
	return incrBy(d, args[0], -delta)
}

func execMGet(_ *Store, d *db, args []string) resp.RedisValue {
	values := make([]resp.RedisValue, len(args))
	for i, key := range args {
		b, exists, wrongType := d.getString(key)
		if !exists || wrongType {
			values[i] = replyNullBulk
			continue
		}
		values[i] = bulk(b)
	}
	return resp.RedisArray{Values: values}
}

func execMSet(_ *Store, d *db, args []string) resp.RedisValue {
	if len(args)%2 != 0 {
		return resp.RedisError{Value: "ERR wrong number of arguments for 'mset' command"}
	}
	for i := 0; i < len(args); i += 2 {
		d.data[args[i]] = []byte(args[i+1])
	}
	return replyOK
}

func init() {
	registerCommand("GET", execGet, 2)
	registerCommand("SET", execSet, -3)
	registerCommand("SETNX", execSetNX, 3)
	registerCommand("GETSET", execGetSet, 3)
	registerCommand("STRLEN", execStrLen, 2)
	registerCommand("APPEND", execAppend, 3)
	registerCommand("INCR", execIncr, 2)
	registerCommand("DECR", execDecr, 2)
	registerCommand("INCRBY", execIncrBy, 3)
	registerCommand("DECRBY", execDecrBy, 3)
	registerCommand("MGET", execMGet, -2)
	registerCommand("MSET", execMSet, -3)
}
