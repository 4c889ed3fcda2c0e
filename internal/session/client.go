// Package session implements Client Session State (spec.md §4.4): the
// per-connection state that rides alongside every parsed Command through
// the dispatcher — selected database, auth status, MULTI/EXEC queue,
// WATCH set, and Pub/Sub subscriptions.
//
// Grounded on the teacher's internal/principal.Principal: a small,
// dependency-free identity struct carried through request handling rather
// than derived from a session store lookup. Client plays the same role
// for a RESP connection that Principal plays for an HTTP request.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

// Name mirrors real Redis's empty-by-default CLIENT SETNAME/GETNAME slot.
type Client struct {
	ID   string
	Name string

	mu          sync.Mutex
	dbIndex     int
	authed      bool
	subscriber  *store.Subscriber
	channels    map[string]struct{}
	patterns    map[string]struct{}

	inMulti bool
	dirtyCAS bool
	queued  []command.Command
	watch   *store.WatchSet

	ReplySink ReplySink
}

// ReplySink is how a Client pushes an out-of-band reply — a Pub/Sub
// message, or a response generated without a matching request (none in
// RESP2, but kept as a seam for the admin HTTP surface's SSE/WS bridge).
// Implemented by the external internal/resp collaborator.
type ReplySink interface {
	Push(kind string, args ...string)
}

// New creates a Client with a fresh identity and DB 0 selected.
func New(sink ReplySink) *Client {
	return &Client{
		ID:        uuid.NewString(),
		channels:  make(map[string]struct{}),
		patterns:  make(map[string]struct{}),
		ReplySink: sink,
	}
}

func (c *Client) DBIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dbIndex
}

func (c *Client) SelectDB(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbIndex = idx
}

func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

func (c *Client) SetAuthenticated(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authed = ok
}

// InMulti reports whether a MULTI...EXEC block is open on this client.
func (c *Client) InMulti() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inMulti
}

// BeginMulti opens a transaction block. Calling it while a block is
// already open returns ErrNestedMulti and leaves that block unchanged.
func (c *Client) BeginMulti() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inMulti {
		return ErrNestedMulti
	}
	c.inMulti = true
	c.queued = nil
	c.dirtyCAS = false
	return nil
}

// Queue appends cmd to the open transaction. Caller must have already
// confirmed InMulti().
func (c *Client) Queue(cmd command.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued = append(c.queued, cmd)
}

// MarkDirty flags the open transaction as unrunnable (a queued command
// failed validation at QUEUE time — EXEC must then reply with EXECABORT).
func (c *Client) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirtyCAS = true
}

// EndMulti closes the transaction block and returns the queued commands
// plus whether the block was marked dirty. Clears all MULTI/WATCH state.
func (c *Client) EndMulti() ([]command.Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	queued := c.queued
	dirty := c.dirtyCAS
	c.inMulti = false
	c.queued = nil
	c.dirtyCAS = false
	c.watch = nil
	return queued, dirty
}

// SetWatch installs ws as the active WATCH set, replacing any prior one.
func (c *Client) SetWatch(ws *store.WatchSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watch = ws
}

// Watch returns the active WATCH set, if any.
func (c *Client) Watch() *store.WatchSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watch
}

// ClearWatch discards the active WATCH set (UNWATCH, or a completed EXEC).
func (c *Client) ClearWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watch = nil
}

// Subscriber lazily allocates this client's Pub/Sub mailbox against ps.
func (c *Client) Subscriber(ps *store.PubSub) *store.Subscriber {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscriber == nil {
		c.subscriber = ps.NewSubscriber()
	}
	return c.subscriber
}

// TrackChannel/TrackPattern/UntrackChannel/UntrackPattern maintain the
// client-local view of its own subscriptions, used to answer SUBSCRIBE's
// reply (which echoes the caller's total subscription count) without
// querying PubSub's global tables.

func (c *Client) TrackChannel(ch string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[ch] = struct{}{}
	return len(c.channels) + len(c.patterns)
}

func (c *Client) UntrackChannel(ch string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, ch)
	return len(c.channels) + len(c.patterns)
}

func (c *Client) TrackPattern(pat string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns[pat] = struct{}{}
	return len(c.channels) + len(c.patterns)
}

func (c *Client) UntrackPattern(pat string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.patterns, pat)
	return len(c.channels) + len(c.patterns)
}

// SubscriptionCount returns the total channel+pattern subscription count.
func (c *Client) SubscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels) + len(c.patterns)
}

// Channels returns a snapshot of directly-subscribed channels.
func (c *Client) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

// Patterns returns a snapshot of subscribed patterns.
func (c *Client) Patterns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.patterns))
	for p := range c.patterns {
		out = append(out, p)
	}
	return out
}
