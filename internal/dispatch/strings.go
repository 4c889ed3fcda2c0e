package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func (d *Dispatcher) dispatchString(c *session.Client, db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "GET":
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		return Bulk(s.Bytes())

	case "SET":
		return d.cmdSet(db, cmd)

	case "SETNX":
		if _, ok := db.Get(key); ok {
			return Int(0)
		}
		db.Set(key, value.NewStr(cmd.Arg(2)))
		d.store.Notify(db.Index(), key, "set", d.notify)
		return Int(1)

	case "SETEX", "PSETEX":
		n, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		if n <= 0 {
			return Errf("ERR invalid expire time in '%s' command", strings.ToLower(cmd.Name))
		}
		dur := time.Duration(n) * time.Second
		if cmd.Name == "PSETEX" {
			dur = time.Duration(n) * time.Millisecond
		}
		db.Set(key, value.NewStr(cmd.Arg(3)))
		db.Expire(key, time.Now().Add(dur), store.ExpireFlags{})
		d.store.Notify(db.Index(), key, "set", d.notify)
		return OK()

	case "GETSET":
		old, existed := db.Get(key)
		db.Set(key, value.NewStr(cmd.Arg(2)))
		d.store.Notify(db.Index(), key, "set", d.notify)
		if !existed {
			return Nil()
		}
		s, err := value.AsString(old)
		if err != nil {
			return Err(err)
		}
		return Bulk(s.Bytes())

	case "APPEND":
		v := db.GetOrCreate(key, func() value.Value { return value.NewStr(nil) })
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		n, err := s.Append(cmd.Arg(2))
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "append", d.notify)
		return Int(int64(n))

	case "STRLEN":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		return Int(int64(s.Len()))

	case "GETRANGE":
		start, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		stop, err := cmd.Int(3)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Bulk([]byte{})
		}
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		return Bulk(s.GetRange(int(start), int(stop)))

	case "SETRANGE":
		offset, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewStr(nil) })
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		n, err := s.SetRange(int(offset), cmd.Arg(3))
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "setrange", d.notify)
		return Int(int64(n))

	case "INCR", "DECR":
		delta := int64(1)
		if cmd.Name == "DECR" {
			delta = -1
		}
		return d.incrBy(db, key, delta)

	case "INCRBY", "DECRBY":
		n, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		if cmd.Name == "DECRBY" {
			n = -n
		}
		return d.incrBy(db, key, n)

	case "INCRBYFLOAT":
		f, err := cmd.Float(2)
		if err != nil {
			return Err(err)
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewStr(nil) })
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		n, err := s.IncrByFloat(f)
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "incrbyfloat", d.notify)
		return BulkString(strconv.FormatFloat(n, 'f', -1, 64))

	case "SETBIT":
		offset, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		bit, err := cmd.Int(3)
		if err != nil || (bit != 0 && bit != 1) {
			return Errf("ERR bit is not an integer or out of range")
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewStr(nil) })
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		old, err := s.SetBit(int(offset), int(bit))
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "setbit", d.notify)
		return Int(int64(old))

	case "GETBIT":
		offset, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		bit, err := s.GetBit(int(offset))
		if err != nil {
			return Err(err)
		}
		return Int(int64(bit))

	case "MGET":
		out := make([]Response, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			v, ok := db.Get(cmd.Str(i))
			if !ok {
				out[i-1] = Nil()
				continue
			}
			s, err := value.AsString(v)
			if err != nil {
				out[i-1] = Nil()
				continue
			}
			out[i-1] = Bulk(s.Bytes())
		}
		return Array(out...)

	case "MSET":
		if (cmd.Arity()-1)%2 != 0 {
			return Errf("ERR wrong number of arguments for MSET")
		}
		for i := 1; i < cmd.Arity(); i += 2 {
			db.Set(cmd.Str(i), value.NewStr(cmd.Arg(i+1)))
			d.store.Notify(db.Index(), cmd.Str(i), "set", d.notify)
		}
		return OK()

	case "MSETNX":
		if (cmd.Arity()-1)%2 != 0 {
			return Errf("ERR wrong number of arguments for MSETNX")
		}
		for i := 1; i < cmd.Arity(); i += 2 {
			if _, ok := db.Get(cmd.Str(i)); ok {
				return Int(0)
			}
		}
		for i := 1; i < cmd.Arity(); i += 2 {
			db.Set(cmd.Str(i), value.NewStr(cmd.Arg(i+1)))
			d.store.Notify(db.Index(), cmd.Str(i), "set", d.notify)
		}
		return Int(1)
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) incrBy(db *store.Database, key string, delta int64) Response {
	v := db.GetOrCreate(key, func() value.Value { return value.NewStr(nil) })
	s, err := value.AsString(v)
	if err != nil {
		return Err(err)
	}
	n, err := s.IncrBy(delta)
	if err != nil {
		return Err(err)
	}
	db.MarkWritten(key)
	d.store.Notify(db.Index(), key, "incrby", d.notify)
	return Int(n)
}

// cmdSet implements SET with its NX/XX/EX/PX/KEEPTTL option set.
func (d *Dispatcher) cmdSet(db *store.Database, cmd command.Command) Response {
	key, val := cmd.Str(1), cmd.Arg(2)
	var nx, xx, keepTTL bool
	var ttl time.Duration
	hasTTL := false

	for i := 3; i < cmd.Arity(); i++ {
		switch strings.ToUpper(cmd.Str(i)) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "KEEPTTL":
			keepTTL = true
		case "EX", "PX":
			if i+1 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			n, err := cmd.Int(i + 1)
			if err != nil {
				return Err(err)
			}
			if strings.ToUpper(cmd.Str(i)) == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
			hasTTL = true
			i++
		default:
			return Errf("ERR syntax error")
		}
	}
	if nx && xx {
		return Errf("ERR syntax error")
	}

	_, exists := db.Get(key)
	if nx && exists {
		return Nil()
	}
	if xx && !exists {
		return Nil()
	}

	sv := value.NewStr(val)
	if keepTTL {
		db.SetKeepTTL(key, sv)
	} else {
		db.Set(key, sv)
	}
	if hasTTL {
		db.Expire(key, time.Now().Add(ttl), store.ExpireFlags{})
	}
	d.store.Notify(db.Index(), key, "set", d.notify)
	return OK()
}
