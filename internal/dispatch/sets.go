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

func (d *Dispatcher) dispatchSet(c *session.Client, db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "SADD":
		v := db.GetOrCreate(key, func() value.Value { return value.NewSet(d.setMaxIntsetEntries()) })
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		members := make([][]byte, 0, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			members = append(members, cmd.Arg(i))
		}
		n := s.Add(members...)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "sadd", d.notify)
		}
		return Int(int64(n))

	case "SREM":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		members := make([][]byte, 0, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			members = append(members, cmd.Arg(i))
		}
		n := s.RemoveMembers(members...)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "srem", d.notify)
		}
		return Int(int64(n))

	case "SISMEMBER":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		return Bool(s.IsMember(cmd.Arg(2)))

	case "SCARD":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		return Int(int64(s.Card()))

	case "SMEMBERS":
		v, ok := db.Get(key)
		if !ok {
			return Array()
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		return BulkStrings(s.Members())

	case "SPOP":
		v, ok := db.Get(key)
		if !ok {
			if cmd.Arity() == 3 {
				return Array()
			}
			return Nil()
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		count := 1
		hasCount := cmd.Arity() == 3
		if hasCount {
			n, err := cmd.Int(2)
			if err != nil {
				return Err(err)
			}
			count = int(n)
		}
		popped := s.Pop(count)
		db.MarkWritten(key)
		if len(popped) > 0 {
			d.store.Notify(db.Index(), key, "spop", d.notify)
		}
		if !hasCount {
			if len(popped) == 0 {
				return Nil()
			}
			return Bulk(popped[0])
		}
		return BulkStrings(popped)

	case "SRANDMEMBER":
		v, ok := db.Get(key)
		if !ok {
			if cmd.Arity() == 3 {
				return Array()
			}
			return Nil()
		}
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		if cmd.Arity() == 2 {
			members := s.RandMember(1, false)
			if len(members) == 0 {
				return Nil()
			}
			return Bulk(members[0])
		}
		n, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		allowDup := n < 0
		count := int(n)
		if allowDup {
			count = -count
		}
		return BulkStrings(s.RandMember(count, allowDup))

	case "SMOVE":
		dst := cmd.Str(2)
		sv, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		ss, err := value.AsSet(sv)
		if err != nil {
			return Err(err)
		}
		member := cmd.Arg(3)
		if !ss.IsMember(member) {
			return Int(0)
		}
		dv := db.GetOrCreate(dst, func() value.Value { return value.NewSet(d.setMaxIntsetEntries()) })
		ds, err := value.AsSet(dv)
		if err != nil {
			return Err(err)
		}
		ss.RemoveMembers(member)
		ds.Add(member)
		db.MarkWritten(key)
		db.MarkWritten(dst)
		d.store.Notify(db.Index(), key, "srem", d.notify)
		d.store.Notify(db.Index(), dst, "sadd", d.notify)
		return Int(1)

	case "SINTER", "SUNION", "SDIFF":
		sets, err := d.loadSets(db, cmd, 1, cmd.Arity())
		if err != nil {
			return Err(err)
		}
		return BulkStrings(combineSets(cmd.Name, sets))

	case "SINTERSTORE", "SUNIONSTORE", "SDIFFSTORE":
		dst := cmd.Str(1)
		sets, err := d.loadSets(db, cmd, 2, cmd.Arity())
		if err != nil {
			return Err(err)
		}
		result := combineSets(strings.TrimSuffix(cmd.Name, "STORE"), sets)
		out := value.NewSet(d.setMaxIntsetEntries())
		out.Add(result...)
		if out.Empty() {
			db.Delete(dst)
		} else {
			db.Set(dst, out)
		}
		d.store.Notify(db.Index(), dst, strings.ToLower(strings.TrimSuffix(cmd.Name, "STORE")), d.notify)
		return Int(int64(len(result)))

	case "SSCAN":
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
		s, err := value.AsSet(v)
		if err != nil {
			return Err(err)
		}
		members := s.Members()
		next, page := value.ScanPage(members, value.ScanCursor(cursorN), count)
		children := make([]Response, 0, len(page))
		for _, m := range page {
			if !pattern.Match(match, string(m)) {
				continue
			}
			children = append(children, Bulk(m))
		}
		return Array(BulkString(strconv.FormatUint(uint64(next), 10)), Array(children...))
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

// loadSets fetches the Set at every key argument in [start,end), treating
// a missing key as an empty set (redis-server's SINTER/SUNION/SDIFF
// semantics) rather than an error.
func (d *Dispatcher) loadSets(db *store.Database, cmd command.Command, start, end int) ([]*value.Set, error) {
	sets := make([]*value.Set, 0, end-start)
	for i := start; i < end; i++ {
		v, ok := db.Get(cmd.Str(i))
		if !ok {
			sets = append(sets, value.NewSet(d.setMaxIntsetEntries()))
			continue
		}
		s, err := value.AsSet(v)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func combineSets(op string, sets []*value.Set) [][]byte {
	switch op {
	case "SINTER":
		return value.Inter(sets...)
	case "SUNION":
		return value.Union(sets...)
	default:
		return value.Diff(sets...)
	}
}
