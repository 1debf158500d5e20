package memstore

import (
	"github.com/cosmez/reapi-go/internal/resp"
)

func (d *db) getList(key string) (l *listValue, wrongType bool) {
	v, ok := d.data[key]
	if !ok {
		return nil, false
	}
	l, ok = v.(*listValue)
	return l, !ok
}

func push(d *db, args []string, left bool) resp.RedisValue {
	l, wrongType := d.getList(args[0])
	if wrongType {
		return errWrongType
	}
	if l == nil {
		l = &listValue{}
		d.data[args[0]] = l
	}
	for _, v := range args[1:] {
		if left {
			l.items = append([][]byte{[]byte(v)}, l.items...)
		} else {
			l.items = append(l.items, []byte(v))
		}
	}
	return integer(len(l.items))
}

func execLPush(_ *Store, d *db, args []string) resp.RedisValue {
	return push(d, args, true)
}

func execRPush(_ *Store, d *db, args []string) resp.RedisValue {
	return push(d, args, false)
}

func pop(d *db, key string, left bool) resp.RedisValue {
	l, wrongType := d.getList(key)
	if wrongType {
		return errWrongType
	}
	if l == nil || len(l.items) == 0 {
		return replyNullBulk
	}
	var item []byte
	if left {
		item, l.items = l.items[0], l.items[1:]
	} else {
		last := len(l.items) - 1
		item, l.items = l.items[last], l.items[:last]
	}
	if len(l.items) == 0 {
		delete(d.data, key)
	}
	return bulk(item)
}

func execLPop(_ *Store, d *db, args []string) resp.RedisValue {
	return pop(d, args[0], true)
}

func execRPop(_ *Store, d *db, args []string) resp.RedisValue {
	return pop(d, args[0], false)
}

func execLLen(_ *Store, d *db, args []string) resp.RedisValue {
	l, wrongType := d.getList(args[0])
	if wrongType {
		return errWrongType
	}
	if l == nil {
		return replyZero
	}
	return integer(len(l.items))
}

// execLRange handles LRANGE key start stop. Negative indexes count from the
// end of the list.
func execLRange(_ *Store, d *db, args []string) resp.RedisValue {
	start, ok1 := parseInt(args[1])
	stop, ok2 := parseInt(args[2])
	if !ok1 || !ok2 {
		return errNotInteger
	}
	l, wrongType := d.getList(args[0])
	if wrongType {
		return errWrongType
	}
	if l == nil {
		return replyEmptyList
	}

	n := int64(len(l.items))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return replyEmptyList
	}

	values := make([]resp.RedisValue, 0, stop-start+1)
	for _, item := range l.items[start : stop+1] {
		values = append(values, bulk(item))
	}
	return resp.RedisArray{Values: values}
}

func init() {
	registerCommand("LPUSH", execLPush, -3)
	registerCommand("RPUSH", execRPush, -3)
	registerCommand("LPOP", execLPop, 2)
	registerCommand("RPOP", execRPop, 2)
	registerCommand("LLEN", execLLen, 2)
	registerCommand("LRANGE", execLRange, 4)
}
