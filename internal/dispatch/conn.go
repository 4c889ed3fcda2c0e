package dispatch

import (
	"strconv"
	"strings"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
)

// dispatchConn implements the connection-housekeeping commands: AUTH,
// PING, ECHO, and the CLIENT subcommand family.
func (d *Dispatcher) dispatchConn(c *session.Client, cmd command.Command) Response {
	switch cmd.Name {
	case "AUTH":
		if d.requirepass == "" {
			return Errf("ERR Client sent AUTH, but no password is set. Did you mean AUTH <username> <password>?")
		}
		pass := cmd.Str(1)
		if cmd.Arity() == 3 {
			pass = cmd.Str(2)
		}
		if pass != d.requirepass {
			return Errf("WRONGPASS invalid username-password pair or user is disabled.")
		}
		c.SetAuthenticated(true)
		return OK()

	case "PING":
		if cmd.Arity() == 2 {
			return BulkString(cmd.Str(1))
		}
		return Status("PONG")

	case "ECHO":
		return BulkString(cmd.Str(1))

	case "CLIENT":
		return d.dispatchClientSub(c, cmd)
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) dispatchClientSub(c *session.Client, cmd command.Command) Response {
	if cmd.Arity() < 2 {
		return Errf("ERR wrong number of arguments for 'client' command")
	}
	switch strings.ToUpper(cmd.Str(1)) {
	case "GETNAME":
		return BulkString(c.Name)
	case "SETNAME":
		if cmd.Arity() != 3 {
			return Errf("ERR wrong number of arguments for 'client|setname' command")
		}
		c.Name = cmd.Str(2)
		return OK()
	case "ID":
		return BulkString(c.ID)
	case "LIST":
		return BulkString("id=" + c.ID + " db=" + strconv.Itoa(c.DBIndex()))
	case "NO-EVICT", "NO-TOUCH", "REPLY":
		return OK()
	}
	return Errf("ERR Unknown CLIENT subcommand")
}
