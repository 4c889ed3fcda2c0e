package dispatch

import (
	"strconv"
	"strings"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/pattern"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func (d *Dispatcher) dispatchHash(c *session.Client, db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "HSET", "HMSET":
		if (cmd.Arity()-2)%2 != 0 || cmd.Arity() == 2 {
			return Errf("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd.Name))
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewHash(d.hashMaxZiplistEntries(), d.hashMaxZiplistValue()) })
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		added := 0
		for i := 2; i < cmd.Arity(); i += 2 {
			if h.Set(cmd.Str(i), cmd.Arg(i+1)) {
				added++
			}
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "hset", d.notify)
		if cmd.Name == "HMSET" {
			return OK()
		}
		return Int(int64(added))

	case "HSETNX":
		v := db.GetOrCreate(key, func() value.Value { return value.NewHash(d.hashMaxZiplistEntries(), d.hashMaxZiplistValue()) })
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		ok := h.SetNX(cmd.Str(2), cmd.Arg(3))
		db.MarkWritten(key)
		if ok {
			d.store.Notify(db.Index(), key, "hset", d.notify)
		}
		return Bool(ok)

	case "HGET":
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		val, ok := h.Get(cmd.Str(2))
		if !ok {
			return Nil()
		}
		return Bulk(val)

	case "HMGET":
		out := make([]Response, cmd.Arity()-2)
		v, ok := db.Get(key)
		if !ok {
			for i := range out {
				out[i] = Nil()
			}
			return Array(out...)
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		for i := 2; i < cmd.Arity(); i++ {
			val, ok := h.Get(cmd.Str(i))
			if !ok {
				out[i-2] = Nil()
				continue
			}
			out[i-2] = Bulk(val)
		}
		return Array(out...)

	case "HDEL":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		fields := make([]string, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			fields[i-2] = cmd.Str(i)
		}
		n := h.Del(fields...)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "hdel", d.notify)
		}
		return Int(int64(n))

	case "HLEN":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		return Int(int64(h.Len()))

	case "HSTRLEN":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		val, ok := h.Get(cmd.Str(2))
		if !ok {
			return Int(0)
		}
		return Int(int64(len(val)))

	case "HKEYS":
		v, ok := db.Get(key)
		if !ok {
			return Array()
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		keys := h.Keys()
		out := make([][]byte, len(keys))
		for i, k := range keys {
			out[i] = []byte(k)
		}
		return BulkStrings(out)

	case "HVALS":
		v, ok := db.Get(key)
		if !ok {
			return Array()
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		return BulkStrings(h.Vals())

	case "HGETALL":
		v, ok := db.Get(key)
		if !ok {
			return Array()
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		all := h.All()
		children := make([]Response, 0, len(all)*2)
		for k, val := range all {
			children = append(children, BulkString(k), Bulk(val))
		}
		return Array(children...)

	case "HEXISTS":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		_, ok = h.Get(cmd.Str(2))
		return Bool(ok)

	case "HINCRBY":
		delta, err := cmd.Int(3)
		if err != nil {
			return Err(err)
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewHash(d.hashMaxZiplistEntries(), d.hashMaxZiplistValue()) })
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		n, err := h.IncrBy(cmd.Str(2), delta)
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "hincrby", d.notify)
		return Int(n)

	case "HINCRBYFLOAT":
		delta, err := cmd.Float(3)
		if err != nil {
			return Err(err)
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewHash(d.hashMaxZiplistEntries(), d.hashMaxZiplistValue()) })
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		n, err := h.IncrByFloat(cmd.Str(2), delta)
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "hincrbyfloat", d.notify)
		return BulkString(formatScore(n))

	case "HSCAN":
		cursorN, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		match := "*"
		count := 10
		for i := 3; i < cmd.Arity(); i++ {
			switch strings.ToUpper(cmd.Str(i)) {
			case "MATCH":
				if i+1 >= cmd.Arity() {
					return Errf("ERR syntax error")
				}
				match = cmd.Str(i + 1)
				i++
			case "COUNT":
				if i+1 >= cmd.Arity() {
					return Errf("ERR syntax error")
				}
				n, err := cmd.Int(i + 1)
				if err != nil {
					return Err(err)
				}
				count = int(n)
				i++
			default:
				return Errf("ERR syntax error")
			}
		}
		v, ok := db.Get(key)
		if !ok {
			return Array(BulkString("0"), Array())
		}
		h, err := value.AsHash(v)
		if err != nil {
			return Err(err)
		}
		keys := h.Keys()
		next, page := value.ScanPage(keys, value.ScanCursor(cursorN), count)
		children := make([]Response, 0, len(page)*2)
		for _, f := range page {
			if !pattern.Match(match, f) {
				continue
			}
			val, _ := h.Get(f)
			children = append(children, BulkString(f), Bulk(val))
		}
		return Array(BulkString(strconv.FormatUint(uint64(next), 10)), Array(children...))
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}
