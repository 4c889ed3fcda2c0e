package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/pattern"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

// dispatchAdmin implements the server-introspection and persistence-stub
// commands: COMMAND, CONFIG, INFO, SLOWLOG, OBJECT, DEBUG, MONITOR, WAIT,
// LASTSAVE, SAVE, BGSAVE, BGREWRITEAOF. Persistence commands are
// best-effort acks — SPEC_FULL.md's persistence component is a
// stand-in surface, not a real RDB/AOF writer (see DESIGN.md).
func (d *Dispatcher) dispatchAdmin(c *session.Client, db *store.Database, cmd command.Command) Response {
	switch cmd.Name {
	case "COMMAND":
		return d.cmdCommand(cmd)

	case "CONFIG":
		return d.cmdConfig(cmd)

	case "INFO":
		return BulkString(d.renderInfo())

	case "SLOWLOG":
		if cmd.Arity() < 2 {
			return Errf("ERR wrong number of arguments for 'slowlog' command")
		}
		switch strings.ToUpper(cmd.Str(1)) {
		case "GET":
			return Array()
		case "LEN":
			return Int(0)
		case "RESET":
			return OK()
		}
		return Errf("ERR Unknown SLOWLOG subcommand")

	case "OBJECT":
		return d.cmdObject(db, cmd)

	case "DEBUG":
		return d.cmdDebug(db, cmd)

	case "MONITOR":
		d.monitors.add(c)
		return OK()

	case "WAIT":
		return Int(0)

	case "LASTSAVE":
		return Int(d.persist.LastSave())

	case "SAVE":
		d.persist.Save()
		return Status("OK")

	case "BGSAVE":
		go d.persist.BGSave()
		return Status("Background saving started")

	case "BGREWRITEAOF":
		d.persist.BGRewriteAOF()
		return Status("Background append only file rewriting started")
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) cmdCommand(cmd command.Command) Response {
	if cmd.Arity() == 1 {
		children := make([]Response, 0, len(table))
		for name, spec := range table {
			children = append(children, Array(
				BulkString(strings.ToLower(name)),
				Int(int64(spec.Arity)),
			))
		}
		return Array(children...)
	}
	switch strings.ToUpper(cmd.Str(1)) {
	case "COUNT":
		return Int(int64(len(table)))
	case "DOCS":
		return Array()
	}
	return Array()
}

func (d *Dispatcher) cmdConfig(cmd command.Command) Response {
	if cmd.Arity() < 2 {
		return Errf("ERR wrong number of arguments for 'config' command")
	}
	switch strings.ToUpper(cmd.Str(1)) {
	case "GET":
		if cmd.Arity() != 3 {
			return Errf("ERR wrong number of arguments for 'config|get' command")
		}
		pairs := d.cfg.Match(pattern.Match, strings.ToLower(cmd.Str(2)))
		children := make([]Response, 0, len(pairs)*2)
		for _, kv := range pairs {
			children = append(children, BulkString(kv[0]), BulkString(kv[1]))
		}
		return Array(children...)
	case "SET":
		if cmd.Arity() != 4 {
			return Errf("ERR wrong number of arguments for 'config|set' command")
		}
		if err := d.cfg.Set(cmd.Str(2), cmd.Str(3)); err != nil {
			return Err(err)
		}
		return OK()
	case "RESETSTAT":
		return OK()
	}
	return Errf("ERR Unknown CONFIG subcommand")
}

func (d *Dispatcher) cmdObject(db *store.Database, cmd command.Command) Response {
	if cmd.Arity() < 2 {
		return Errf("ERR wrong number of arguments for 'object' command")
	}
	switch strings.ToUpper(cmd.Str(1)) {
	case "ENCODING":
		if cmd.Arity() != 3 {
			return Errf("ERR wrong number of arguments")
		}
		v, ok := db.Get(cmd.Str(2))
		if !ok {
			return Nil()
		}
		return BulkString(v.Encoding())
	case "REFCOUNT", "FREQ":
		return Int(1)
	case "IDLETIME":
		return Int(0)
	}
	return Errf("ERR Unknown OBJECT subcommand")
}

func (d *Dispatcher) cmdDebug(db *store.Database, cmd command.Command) Response {
	if cmd.Arity() < 2 {
		return Errf("ERR wrong number of arguments for 'debug' command")
	}
	switch strings.ToUpper(cmd.Str(1)) {
	case "JSONMAP":
		return OK()
	case "SLEEP":
		f, err := cmd.Float(2)
		if err != nil {
			return Err(err)
		}
		time.Sleep(time.Duration(f * float64(time.Second)))
		return OK()
	case "SET-ACTIVE-EXPIRE":
		return OK()
	case "OBJECT":
		return d.cmdObject(db, command.New([][]byte{cmd.Arg(0), []byte("ENCODING"), cmd.Arg(2)}))
	}
	return Errf("ERR DEBUG subcommand not supported")
}

func (d *Dispatcher) renderInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Server\r\nuptime_in_seconds:%d\r\n", int64(time.Since(d.started).Seconds()))
	fmt.Fprintf(&b, "# Keyspace\r\n")
	for i := 0; i < d.store.NumDatabases(); i++ {
		if dbN, ok := d.store.Select(i); ok {
			if n := dbN.Size(); n > 0 {
				fmt.Fprintf(&b, "db%d:keys=%d\r\n", i, n)
			}
		}
	}
	return b.String()
}
