package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
)

// monitorSet tracks every client that issued MONITOR, and fans out a
// formatted status line for each subsequently dispatched command to all
// of them — redis-server's "firehose" debugging feed (spec.md §4.3's
// MONITOR note: "Registers the connection's reply sink to receive every
// subsequently executed command formatted as a status line").
//
// Formatting is best-effort, not byte-for-byte: it mirrors redis-server's
// `<unix-ts>.<us> [<db> <client>] "<cmd>" "<arg>" ...` shape but uses the
// client's session ID in place of a socket address, since session.Client
// carries no network address (see DESIGN.md's Open Question decision).
type monitorSet struct {
	mu       sync.Mutex
	watchers map[string]session.ReplySink
}

func newMonitorSet() *monitorSet {
	return &monitorSet{watchers: make(map[string]session.ReplySink)}
}

// add registers c's reply sink to receive the monitor feed.
func (m *monitorSet) add(c *session.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers[c.ID] = c.ReplySink
}

// remove drops c from the monitor feed (on disconnect).
func (m *monitorSet) remove(c *session.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watchers, c.ID)
}

func (m *monitorSet) active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers) > 0
}

// broadcast pushes cmd's formatted status line to every active monitor.
// The issuing client itself is exempt so it doesn't see its own MONITOR
// command echoed back before the ack.
func (m *monitorSet) broadcast(c *session.Client, cmd command.Command) {
	if !m.active() || cmd.Arity() == 0 {
		return
	}
	line := formatMonitorLine(c, cmd)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sink := range m.watchers {
		if id == c.ID {
			continue
		}
		sink.Push("monitor", line)
	}
}

func formatMonitorLine(c *session.Client, cmd command.Command) string {
	now := time.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%06d [%d %s]", now.Unix(), now.Nanosecond()/1000, c.DBIndex(), c.ID)
	for i := 0; i < cmd.Arity(); i++ {
		fmt.Fprintf(&b, " %q", cmd.Arg(i))
	}
	return b.String()
}
