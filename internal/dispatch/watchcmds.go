package dispatch

import (
	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

// dispatchWatch implements WATCH/UNWATCH against the client's active
// store.WatchSet (spec.md §4.4), snapshotting each named key's current
// store.Database version at WATCH time.
func (d *Dispatcher) dispatchWatch(c *session.Client, db *store.Database, cmd command.Command) Response {
	switch cmd.Name {
	case "WATCH":
		if c.InMulti() {
			return Errf("ERR WATCH inside MULTI is not allowed")
		}
		keys := make([]string, cmd.Arity()-1)
		for i := 1; i < cmd.Arity(); i++ {
			keys[i-1] = cmd.Str(i)
		}
		ws := c.Watch()
		if ws == nil {
			c.SetWatch(db.NewWatchSet(keys...))
		} else {
			ws.Add(keys...)
		}
		return OK()

	case "UNWATCH":
		c.ClearWatch()
		return OK()
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}
