package output

import (
	"github.com/cosmez/reapi-go/internal/resp"
	"github.com/cosmez/reapi-go/internal/serializer"
)

// DecodeValue runs every string payload in v through s.Deserialize and
// returns the rewritten reply. Payloads the codec cannot decode are left as
// they were, so a mixed reply (e.g. MGET over encoded and plain keys) still
// converts. Map keys and set members are never decoded.
func DecodeValue(v resp.RedisValue, s serializer.Serializer) resp.RedisValue {
	if s == nil {
		return v
	}

	decode := func(payload []byte) resp.RedisValue {
		out, err := s.Deserialize(payload)
		if err != nil {
			return nil
		}
		return resp.NewBulk(out)
	}

	switch val := v.(type) {
	case resp.RedisBulkString:
		if d := decode([]byte(val.Value)); d != nil {
			return d
		}
	case resp.RedisBlob:
		if d := decode(val.Value); d != nil {
			return d
		}
	case resp.RedisArray:
		values := make([]resp.RedisValue, len(val.Values))
		for i, elem := range val.Values {
			values[i] = DecodeValue(elem, s)
		}
		return resp.RedisArray{Values: values}
	case resp.RedisMap:
		return resp.RedisMap{Entries: decodeEntries(val.Entries, s)}
	case resp.RedisOrderedMap:
		return resp.RedisOrderedMap{Entries: decodeEntries(val.Entries, s)}
	}
	return v
}

func decodeEntries(entries []resp.MapEntry, s serializer.Serializer) []resp.MapEntry {
	out := make([]resp.MapEntry, len(entries))
	for i, e := range entries {
		out[i] = resp.MapEntry{Key: e.Key, Value: DecodeValue(e.Value, s)}
	}
	return out
}
