package memstore

import (
	"github.com/cosmez/reapi-go/internal/resp"
)

func (d *db) getSet(key string) (set setValue, wrongType bool) {
	v, ok := d.data[key]
	if !ok {
		return nil, false
	}
	set, ok = v.(setValue)
	return set, !ok
}

func execSAdd(_ *Store, d *db, args []string) resp.RedisValue {
	set, wrongType := d.getSet(args[0])
	if wrongType {
		return errWrongType
	}
	if set == nil {
		set = make(setValue)
		d.data[args[0]] = set
	}
	added := 0
	for _, m := range args[1:] {
		if _, ok := set[m]; !ok {
			set[m] = struct{}{}
			added++
		}
	}
	return integer(added)
}

func execSRem(_ *Store, d *db, args []string) resp.RedisValue {
	set, wrongType := d.getSet(args[0])
	if wrongType {
		return errWrongType
	}
	removed := 0
	for _, m := range args[1:] {
		if _, ok := set[m]; ok {
			delete(set, m)
			removed++
		}
	}
	if set != nil && len(set) == 0 {
		delete(d.data, args[0])
	}
	return integer(removed)
}

// execSMembers returns the members as an unordered set.
func execSMembers(_ *Store, d *db, args []string) resp.RedisValue {
	set, wrongType := d.getSet(args[0])
	if wrongType {
		return errWrongType
	}
	members := make([]resp.RedisKey, 0, len(set))
	for m := range set {
		members = append(members, member([]byte(m)))
	}
	return resp.RedisSet{Members: members}
}

func execSIsMember(_ *Store, d *db, args []string) resp.RedisValue {
	set, wrongType := d.getSet(args[0])
	if wrongType {
		return errWrongType
	}
	if _, ok := set[args[1]]; ok {
		return replyOne
	}
	return replyZero
}

func execSCard(_ *Store, d *db, args []string) resp.RedisValue {
	set, wrongType := d.getSet(args[0])
	if wrongType {
		return errWrongType
	}
	return integer(len(set))
}

func init() {
	registerCommand("SADD", execSAdd, -3)
	registerCommand("SREM", execSRem, -3)
	registerCommand("SMEMBERS", execSMembers, 2)
	registerCommand("SISMEMBER", execSIsMember, 3)
	registerCommand("SCARD", execSCard, 2)
}
