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

func (d *Dispatcher) dispatchKeys(c *session.Client, db *store.Database, cmd command.Command) Response {
	switch cmd.Name {
	case "DEL", "UNLINK":
		keys := make([]string, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			keys[i-1] = cmd.Str(i)
		}
		n := db.Delete(keys...)
		for _, k := range keys {
			d.store.Notify(db.Index(), k, "del", d.notify)
		}
		return Int(int64(n))

	case "EXISTS":
		keys := make([]string, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			keys[i-1] = cmd.Str(i)
		}
		return Int(int64(db.Exists(keys...)))

	case "TYPE":
		v, ok := db.Get(cmd.Str(1))
		if !ok {
			return Status("none")
		}
		return Status(v.Kind().String())

	case "EXPIRE", "PEXPIRE", "EXPIREAT", "PEXPIREAT":
		return d.cmdExpire(db, cmd)

	case "TTL", "PTTL":
		ttl, ok := db.TTL(cmd.Str(1))
		if !ok {
			return Int(-2)
		}
		if ttl == -1 {
			return Int(-1)
		}
		if cmd.Name == "PTTL" {
			return Int(int64(ttl / time.Millisecond))
		}
		return Int(int64(ttl / time.Second))

	case "PERSIST":
		return Bool(db.Persist(cmd.Str(1)))

	case "RENAME":
		if err := db.Rename(cmd.Str(1), cmd.Str(2)); err != nil {
			return Errf("ERR no such key")
		}
		d.store.Notify(db.Index(), cmd.Str(1), "rename_from", d.notify)
		d.store.Notify(db.Index(), cmd.Str(2), "rename_to", d.notify)
		return OK()

	case "RENAMENX":
		ok, err := db.RenameNX(cmd.Str(1), cmd.Str(2))
		if err != nil {
			return Errf("ERR no such key")
		}
		if ok {
			d.store.Notify(db.Index(), cmd.Str(1), "rename_from", d.notify)
			d.store.Notify(db.Index(), cmd.Str(2), "rename_to", d.notify)
		}
		return Bool(ok)

	case "KEYS":
		return BulkStringsFromStrings(db.Keys(cmd.Str(1)))

	case "SCAN":
		return d.cmdScan(db, cmd)

	case "RANDOMKEY":
		k, ok := db.RandomKey()
		if !ok {
			return Nil()
		}
		return BulkString(k)

	case "TOUCH":
		keys := make([]string, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			keys[i-1] = cmd.Str(i)
		}
		return Int(int64(db.Touch(keys...)))

	case "COPY":
		replace := false
		for i := 3; i < cmd.Arity(); i++ {
			if strings.EqualFold(cmd.Str(i), "REPLACE") {
				replace = true
			}
		}
		ok, err := db.Copy(cmd.Str(1), cmd.Str(2), replace)
		if err != nil {
			return Err(err)
		}
		if ok {
			d.store.Notify(db.Index(), cmd.Str(2), "copy_to", d.notify)
		}
		return Bool(ok)

	case "SORT":
		return d.cmdSort(db, cmd)

	case "DUMP":
		v, ok := db.Get(cmd.Str(1))
		if !ok {
			return Nil()
		}
		return Bulk(value.Dump(v))

	case "RESTORE":
		return d.cmdRestore(db, cmd)

	case "FLUSHDB":
		db.Flush()
		return OK()

	case "FLUSHALL":
		for i := 0; i < d.store.NumDatabases(); i++ {
			if other, ok := d.store.Select(i); ok {
				other.Flush()
			}
		}
		return OK()

	case "DBSIZE":
		return Int(int64(db.Size()))

	case "SELECT":
		idx, err := cmd.Int(1)
		if err != nil {
			return Err(err)
		}
		if _, ok := d.store.Select(int(idx)); !ok {
			return Errf("ERR DB index is out of range")
		}
		c.SelectDB(int(idx))
		return OK()
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) cmdExpire(db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	n, err := cmd.Int(2)
	if err != nil {
		return Err(err)
	}
	var when time.Time
	switch cmd.Name {
	case "EXPIRE":
		when = time.Now().Add(time.Duration(n) * time.Second)
	case "PEXPIRE":
		when = time.Now().Add(time.Duration(n) * time.Millisecond)
	case "EXPIREAT":
		when = time.Unix(n, 0)
	case "PEXPIREAT":
		when = time.UnixMilli(n)
	}
	flags := store.ExpireFlags{}
	for i := 3; i < cmd.Arity(); i++ {
		switch strings.ToUpper(cmd.Str(i)) {
		case "NX":
			flags.NX = true
		case "XX":
			flags.XX = true
		case "GT":
			flags.GT = true
		case "LT":
			flags.LT = true
		default:
			return Errf("ERR Unsupported option %s", cmd.Str(i))
		}
	}
	ok, err := db.Expire(key, when, flags)
	if err != nil {
		return Err(err)
	}
	if ok {
		d.store.Notify(db.Index(), key, "expire", d.notify)
	}
	return Bool(ok)
}

func (d *Dispatcher) cmdScan(db *store.Database, cmd command.Command) Response {
	cursorN, err := cmd.Int(1)
	if err != nil {
		return Err(err)
	}
	match := "*"
	count := 10
	for i := 2; i < cmd.Arity(); i++ {
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
		case "TYPE":
			i++ // accepted but not filtered on; no per-kind index maintained
		default:
			return Errf("ERR syntax error")
		}
	}
	page, next := db.Scan(value.ScanCursor(cursorN), match, count)
	return Array(BulkString(strconv.FormatUint(uint64(next), 10)), BulkStringsFromStrings(page))
}

func (d *Dispatcher) cmdSort(db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	opts := store.SortOptions{Count: -1}
	storeDst := ""
	for i := 2; i < cmd.Arity(); i++ {
		switch strings.ToUpper(cmd.Str(i)) {
		case "ASC":
		case "DESC":
			opts.Descending = true
		case "ALPHA":
			opts.Alpha = true
		case "BY":
			if i+1 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			opts.By = cmd.Str(i + 1)
			i++
		case "GET":
			if i+1 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			opts.Get = append(opts.Get, cmd.Str(i+1))
			i++
		case "LIMIT":
			if i+2 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			off, err := cmd.Int(i + 1)
			if err != nil {
				return Err(err)
			}
			n, err := cmd.Int(i + 2)
			if err != nil {
				return Err(err)
			}
			opts.Limit = true
			opts.Offset, opts.Count = int(off), int(n)
			i += 2
		case "STORE":
			if i+1 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			storeDst = cmd.Str(i + 1)
			i++
		default:
			return Errf("ERR syntax error")
		}
	}
	out, err := db.Sort(key, opts)
	if err != nil {
		return Err(err)
	}
	if storeDst == "" {
		return BulkStrings(out)
	}
	list := value.NewList()
	list.PushRight(out...)
	if list.Empty() {
		db.Delete(storeDst)
	} else {
		db.Set(storeDst, list)
	}
	d.store.Notify(db.Index(), storeDst, "sortstore", d.notify)
	return Int(int64(len(out)))
}

func (d *Dispatcher) cmdRestore(db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	ttlMS, err := cmd.Int(2)
	if err != nil {
		return Err(err)
	}
	replace := false
	for i := 4; i < cmd.Arity(); i++ {
		if strings.EqualFold(cmd.Str(i), "REPLACE") {
			replace = true
		}
	}
	if _, exists := db.Get(key); exists && !replace {
		return Errf("BUSYKEY Target key name already exists.")
	}
	v, err := value.Restore(cmd.Arg(3), d.setMaxIntsetEntries(), d.hashMaxZiplistEntries(), d.hashMaxZiplistValue())
	if err != nil {
		return Err(err)
	}
	db.Set(key, v)
	if ttlMS > 0 {
		db.Expire(key, time.Now().Add(time.Duration(ttlMS)*time.Millisecond), store.ExpireFlags{})
	}
	d.store.Notify(db.Index(), key, "restore", d.notify)
	return OK()
}

// BulkStringsFromStrings converts a []string into an Array of Bulk replies.
func BulkStringsFromStrings(items []string) Response {
	out := make([]Response, len(items))
	for i, s := range items {
		out[i] = BulkString(s)
	}
	return Array(out...)
}
