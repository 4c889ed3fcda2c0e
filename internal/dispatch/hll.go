package dispatch

import (
	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

// dispatchHLL implements PFADD/PFCOUNT/PFMERGE. The sketch rides inside a
// Str (spec.md §4.1's note that HLL has no separate Kind), so every key
// involved must either be absent or already hold a Str.
func (d *Dispatcher) dispatchHLL(db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "PFADD":
		v := db.GetOrCreate(key, func() value.Value { return value.NewHLL() })
		s, err := value.AsString(v)
		if err != nil {
			return Err(err)
		}
		vals := make([][]byte, 0, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			vals = append(vals, cmd.Arg(i))
		}
		changed, err := value.PFAdd(s, vals...)
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		if changed {
			d.store.Notify(db.Index(), key, "pfadd", d.notify)
		}
		return Bool(changed)

	case "PFCOUNT":
		sketches := make([]*value.Str, 0, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			v, ok := db.Get(cmd.Str(i))
			if !ok {
				continue
			}
			s, err := value.AsString(v)
			if err != nil {
				return Err(err)
			}
			sketches = append(sketches, s)
		}
		n, err := value.PFCount(sketches...)
		if err != nil {
			return Err(err)
		}
		return Int(n)

	case "PFMERGE":
		dv := db.GetOrCreate(key, func() value.Value { return value.NewHLL() })
		dst, err := value.AsString(dv)
		if err != nil {
			return Err(err)
		}
		srcs := make([]*value.Str, 0, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			v, ok := db.Get(cmd.Str(i))
			if !ok {
				continue
			}
			s, err := value.AsString(v)
			if err != nil {
				return Err(err)
			}
			srcs = append(srcs, s)
		}
		if err := value.PFMerge(dst, srcs...); err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "pfadd", d.notify)
		return OK()
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}
