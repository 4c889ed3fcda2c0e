package dispatch

import (
	"strings"
	"time"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func (d *Dispatcher) dispatchList(c *session.Client, db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "LPUSH", "RPUSH", "LPUSHX", "RPUSHX":
		requireExists := strings.HasSuffix(cmd.Name, "X")
		if requireExists {
			if _, ok := db.Get(key); !ok {
				return Int(0)
			}
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewList() })
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		vals := make([][]byte, 0, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			vals = append(vals, cmd.Arg(i))
		}
		if strings.HasPrefix(cmd.Name, "L") {
			l.PushLeft(vals...)
		} else {
			l.PushRight(vals...)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, strings.ToLower(cmd.Name), d.notify)
		return Int(int64(l.Len()))

	case "LPOP", "RPOP":
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		l, err := value.AsList(v)
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
		var popped [][]byte
		if cmd.Name == "LPOP" {
			popped = l.PopLeftN(count)
		} else {
			popped = l.PopRightN(count)
		}
		db.MarkWritten(key)
		if len(popped) > 0 {
			d.store.Notify(db.Index(), key, strings.ToLower(cmd.Name), d.notify)
		}
		if !hasCount {
			if len(popped) == 0 {
				return Nil()
			}
			return Bulk(popped[0])
		}
		return BulkStrings(popped)

	case "LLEN":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		return Int(int64(l.Len()))

	case "LINDEX":
		idx, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		b, ok := l.Index(int(idx))
		if !ok {
			return Nil()
		}
		return Bulk(b)

	case "LINSERT":
		where := strings.ToUpper(cmd.Str(2))
		if where != "BEFORE" && where != "AFTER" {
			return Errf("ERR syntax error")
		}
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		n := l.Insert(where == "BEFORE", cmd.Arg(3), cmd.Arg(4))
		if n > 0 {
			db.MarkWritten(key)
			d.store.Notify(db.Index(), key, "linsert", d.notify)
		}
		return Int(int64(n))

	case "LRANGE":
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
			return Array()
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		return BulkStrings(l.Range(int(start), int(stop)))

	case "LREM":
		count, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		n := l.Rem(int(count), cmd.Arg(3))
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "lrem", d.notify)
		}
		return Int(int64(n))

	case "LSET":
		idx, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Err(store.ErrNoSuchKey)
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		if err := l.Set(int(idx), cmd.Arg(3)); err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "lset", d.notify)
		return OK()

	case "LTRIM":
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
			return OK()
		}
		l, err := value.AsList(v)
		if err != nil {
			return Err(err)
		}
		l.Trim(int(start), int(stop))
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "ltrim", d.notify)
		return OK()

	case "RPOPLPUSH":
		return d.rpoplpush(db, key, cmd.Str(2))

	case "BLPOP", "BRPOP":
		return d.blockingPop(c, db, cmd)

	case "BRPOPLPUSH":
		return d.blockingRPopLPush(c, db, cmd)
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) rpoplpush(db *store.Database, src, dst string) Response {
	sv, ok := db.Get(src)
	if !ok {
		return Nil()
	}
	sl, err := value.AsList(sv)
	if err != nil {
		return Err(err)
	}
	dv := db.GetOrCreate(dst, func() value.Value { return value.NewList() })
	dl, err := value.AsList(dv)
	if err != nil {
		return Err(err)
	}
	b, ok := value.RPopLPush(sl, dl)
	if !ok {
		return Nil()
	}
	db.MarkWritten(src)
	db.MarkWritten(dst)
	d.store.Notify(db.Index(), src, "rpop", d.notify)
	d.store.Notify(db.Index(), dst, "lpush", d.notify)
	return Bulk(b)
}

// blockTimeout parses the trailing timeout argument shared by
// BLPOP/BRPOP/BRPOPLPUSH, in seconds with fractional precision; 0 means
// unbounded.
func blockTimeout(cmd command.Command, idx int) (time.Duration, error) {
	f, err := cmd.Float(idx)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, Errf("ERR timeout is negative").Err
	}
	return time.Duration(f * float64(time.Second)), nil
}

// blockingPop implements BLPOP/BRPOP: try every key left-to-right
// immediately; if all are empty, park on all of them until one is woken
// or the timeout elapses, then retry.
func (d *Dispatcher) blockingPop(c *session.Client, db *store.Database, cmd command.Command) Response {
	keys := make([]string, cmd.Arity()-2)
	for i := 1; i < cmd.Arity()-1; i++ {
		keys[i-1] = cmd.Str(i)
	}
	timeout, err := blockTimeout(cmd, cmd.Arity()-1)
	if err != nil {
		return Err(err)
	}

	popLeft := cmd.Name == "BLPOP"
	try := func() (string, []byte, bool) {
		for _, k := range keys {
			v, ok := db.Get(k)
			if !ok {
				continue
			}
			l, err := value.AsList(v)
			if err != nil {
				continue
			}
			var b []byte
			if popLeft {
				b, ok = l.PopLeft()
			} else {
				b, ok = l.PopRight()
			}
			if ok {
				db.MarkWritten(k)
				d.store.Notify(db.Index(), k, strings.ToLower(cmd.Name[1:]), d.notify)
				return k, b, true
			}
		}
		return "", nil, false
	}

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if k, b, ok := try(); ok {
			return Array(BulkString(k), Bulk(b))
		}
		wakes := make([]<-chan struct{}, len(keys))
		cancels := make([]func(), len(keys))
		for i, k := range keys {
			wakes[i], cancels[i] = db.BlockOn(k)
		}
		woken := waitAny(wakes, deadline)
		for _, cancel := range cancels {
			cancel()
		}
		if !woken {
			return NilArray()
		}
	}
}

func (d *Dispatcher) blockingRPopLPush(c *session.Client, db *store.Database, cmd command.Command) Response {
	src, dst := cmd.Str(1), cmd.Str(2)
	timeout, err := blockTimeout(cmd, 3)
	if err != nil {
		return Err(err)
	}
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if r := d.rpoplpush(db, src, dst); r.Kind != KindNil {
			return r
		}
		wake, cancel := db.BlockOn(src)
		woken := waitAny([]<-chan struct{}{wake}, deadline)
		cancel()
		if !woken {
			return Nil()
		}
	}
}

// waitAny blocks until any of wakes fires or deadline passes (zero
// deadline means wait forever). Returns false on timeout.
func waitAny(wakes []<-chan struct{}, deadline time.Time) bool {
	var timeoutC <-chan time.Time
	if !deadline.IsZero() {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		timeoutC = t.C
	}
	switch len(wakes) {
	case 1:
		select {
		case <-wakes[0]:
			return true
		case <-timeoutC:
			return false
		}
	default:
		done := make(chan struct{}, 1)
		for _, w := range wakes {
			go func(w <-chan struct{}) {
				select {
				case <-w:
					select {
					case done <- struct{}{}:
					default:
					}
				case <-timeoutC:
				}
			}(w)
		}
		select {
		case <-done:
			return true
		case <-timeoutC:
			return false
		}
	}
}
