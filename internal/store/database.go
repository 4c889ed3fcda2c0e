// Package store implements the Database container (spec.md §3): N
// independently-indexed namespaces, each owning its own keyspace,
// expiration schedule, WATCH version counters, and blocking-command wait
// queues. Pub/Sub is server-wide rather than per-namespace (it has no
// SELECT-scoping in the wire protocol) and lives in pubsub.go.
//
// Concurrency model mirrors the teacher's DataStore: every Database
// operation is serialized under a single mutex. There is no in-process
// collaborator faster than the mutex for a single-node, in-memory store,
// and every invariant below (lazy expiration, empty-collection deletion,
// version bump ordering) depends on that serialization.
package store

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/pattern"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

// ErrNoSuchKey is returned by operations that require an existing key
// (RENAME, and friends) when the source key is absent.
var ErrNoSuchKey = errors.New("no such key")

// Database is one SELECT-able namespace: keyspace, expirations, and the
// WATCH version counters and blocking wait queues that hang off it.
//
// Invariants:
//   - A key present in entries never maps to an Empty() value; mutators
//     that can empty a collection must call MarkWritten afterward.
//   - A key present in expirations is always present in entries; Expire
//     and removeLocked keep the two in lockstep.
//   - version[key] only ever increases, and bumps on every write
//     (including an expiration-driven delete) that WATCH must observe.
type Database struct {
	log   *zap.Logger
	index int

	mu       sync.Mutex
	entries  map[string]value.Value
	expires  *expireScheduler
	versions map[string]uint64
	blockers *blockerSet
}

func newDatabase(index int, log *zap.Logger) *Database {
	return &Database{
		log:      log.Named(fmt.Sprintf("db%d", index)),
		index:    index,
		entries:  make(map[string]value.Value),
		expires:  newExpireScheduler(),
		versions: make(map[string]uint64),
		blockers: newBlockerSet(),
	}
}

// Index returns this namespace's SELECT index.
func (d *Database) Index() int { return d.index }

// touch bumps key's WATCH version. Caller must hold d.mu.
func (d *Database) touch(key string) {
	d.versions[key]++
}

// Version returns key's current WATCH version (0 if never written).
func (d *Database) Version(key string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(key)
	return d.versions[key]
}

// expireIfDue lazily evicts key if its expiration has passed. Caller must
// hold d.mu. Returns true if key was (or already was) expired-and-gone.
func (d *Database) expireIfDue(key string) bool {
	when, ok := d.expires.at(key)
	if !ok {
		return false
	}
	if time.Now().Before(when) {
		return false
	}
	d.removeLocked(key)
	return true
}

// removeLocked deletes key from every namespace table and bumps its
// version. Caller must hold d.mu.
func (d *Database) removeLocked(key string) {
	delete(d.entries, key)
	d.expires.cancel(key)
	d.touch(key)
}

// Get returns key's value, applying lazy expiration first. The returned
// Value must not be mutated by callers that don't hold a lookup contract
// with Set/delete-if-empty (internal/dispatch command handlers own that).
func (d *Database) Get(key string) (value.Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(key)
	v, ok := d.entries[key]
	return v, ok
}

// Set stores v under key unconditionally, clearing any prior expiration
// (matching SET's default semantics; callers preserving TTL use GetSet-
// style read-modify-write at the command layer, e.g. APPEND/SETRANGE
// reuse the existing expiration by not calling Set).
func (d *Database) Set(key string, v value.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = v
	d.expires.cancel(key)
	d.touch(key)
}

// SetKeepTTL stores v under key, preserving any existing expiration.
func (d *Database) SetKeepTTL(key string, v value.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = v
	d.touch(key)
}

// GetOrCreate returns key's existing value, or installs zero (the result
// of create()) and returns that. Used by write commands against
// collections (LPUSH, SADD, ...) that auto-vivify. The caller must pass a
// create func yielding the correct empty Value for the operation's kind.
func (d *Database) GetOrCreate(key string, create func() value.Value) value.Value {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(key)
	if v, ok := d.entries[key]; ok {
		return v
	}
	v := create()
	d.entries[key] = v
	return v
}

// MarkWritten bumps key's WATCH version and deletes it if its Value has
// gone Empty(). Command handlers call this after any mutation.
func (d *Database) MarkWritten(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.entries[key]
	if ok && v.Empty() {
		delete(d.entries, key)
		d.expires.cancel(key)
	}
	d.touch(key)
	d.blockers.wake(key)
}

// Delete removes keys unconditionally. Returns the count actually present.
func (d *Database) Delete(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, key := range keys {
		d.expireIfDue(key)
		if _, ok := d.entries[key]; ok {
			n++
		}
		d.removeLocked(key)
	}
	return n
}

// Exists counts how many of keys are present (duplicates counted once per
// occurrence, matching EXISTS's multi-key semantics).
func (d *Database) Exists(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, key := range keys {
		d.expireIfDue(key)
		if _, ok := d.entries[key]; ok {
			n++
		}
	}
	return n
}

// Touch updates nothing but the logical recency of keys, and returns how
// many exist. TOUCH and EXISTS share an implementation in real Redis;
// SPEC_FULL.md keeps them distinct operations for clarity at the
// dispatcher.
func (d *Database) Touch(keys ...string) int {
	return d.Exists(keys...)
}

// Rename moves src's value (and expiration) to dst, overwriting dst.
func (d *Database) Rename(src, dst string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(src)
	v, ok := d.entries[src]
	if !ok {
		return ErrNoSuchKey
	}
	when, hasTTL := d.expires.at(src)
	d.entries[dst] = v
	delete(d.entries, src)
	d.expires.cancel(src)
	d.expires.cancel(dst)
	if hasTTL {
		d.expires.set(dst, when)
	}
	d.touch(src)
	d.touch(dst)
	return nil
}

// RenameNX is Rename but refuses to overwrite an existing dst.
func (d *Database) RenameNX(src, dst string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(src)
	d.expireIfDue(dst)
	v, ok := d.entries[src]
	if !ok {
		return false, ErrNoSuchKey
	}
	if _, exists := d.entries[dst]; exists {
		return false, nil
	}
	when, hasTTL := d.expires.at(src)
	d.entries[dst] = v
	delete(d.entries, src)
	d.expires.cancel(src)
	if hasTTL {
		d.expires.set(dst, when)
	}
	d.touch(src)
	d.touch(dst)
	return true, nil
}

// Copy duplicates src's value onto dst. Deep-copies via Dump/Restore so the
// two keys never alias mutable state.
func (d *Database) Copy(src, dst string, replace bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(src)
	d.expireIfDue(dst)
	v, ok := d.entries[src]
	if !ok {
		return false, nil
	}
	if _, exists := d.entries[dst]; exists && !replace {
		return false, nil
	}
	payload := value.Dump(v)
	cp, err := value.Restore(payload, value.DefaultSetMaxIntsetEntries, 128, 64)
	if err != nil {
		return false, fmt.Errorf("copy: %w", err)
	}
	d.entries[dst] = cp
	if when, hasTTL := d.expires.at(src); hasTTL {
		d.expires.set(dst, when)
	} else {
		d.expires.cancel(dst)
	}
	d.touch(dst)
	return true, nil
}

// Expire schedules key to expire at when, honoring the NX/XX/GT/LT flag
// semantics SPEC_FULL.md §12 carries over from EXPIRE's option set.
func (d *Database) Expire(key string, when time.Time, flags ExpireFlags) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(key)
	if _, ok := d.entries[key]; !ok {
		return false, nil
	}
	cur, hasTTL := d.expires.at(key)
	switch {
	case flags.NX && hasTTL:
		return false, nil
	case flags.XX && !hasTTL:
		return false, nil
	case flags.GT && (!hasTTL || !when.After(cur)):
		return false, nil
	case flags.LT && hasTTL && !when.Before(cur):
		return false, nil
	}
	d.expires.set(key, when)
	d.touch(key)
	return true, nil
}

// ExpireFlags mirrors EXPIRE/PEXPIRE/EXPIREAT/PEXPIREAT's NX/XX/GT/LT
// option set. The dispatcher does not reject combinations: it passes every
// flag the client gave, and Expire refuses the update if any set flag's
// condition fails.
type ExpireFlags struct {
	NX, XX, GT, LT bool
}

// Persist removes key's expiration, if any. Reports whether one was
// removed.
func (d *Database) Persist(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.expireIfDue(key) {
		return false
	}
	if _, ok := d.expires.at(key); !ok {
		return false
	}
	d.expires.cancel(key)
	d.touch(key)
	return true
}

// TTL returns the remaining lifetime of key: (-2s, false) if key doesn't
// exist, (-1ns, true) if it exists without an expiration, else the
// remaining duration.
func (d *Database) TTL(key string) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireIfDue(key)
	if _, ok := d.entries[key]; !ok {
		return -2 * time.Second, false
	}
	when, hasTTL := d.expires.at(key)
	if !hasTTL {
		return -1, true
	}
	return time.Until(when), true
}

// RandomKey returns an arbitrary live key, or ("", false) if the namespace
// is empty. Implemented as a uniform pick over a live snapshot rather than
// Go's randomized map iteration order, which isn't uniform across calls.
func (d *Database) RandomKey() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.entries) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return keys[rand.Intn(len(keys))], true
}

// Keys returns every live key matching glob pattern p.
func (d *Database) Keys(p string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.entries))
	for k := range d.entries {
		if d.expireIfDue(k) {
			continue
		}
		if pattern.Match(p, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Scan returns the next cursor-ordered page of live keys matching p,
// built atop value.ScanPage over a sorted snapshot of the keyspace taken
// on each call. Keys added or removed between calls shift positions, so a
// key present throughout can be seen twice or missed across a SCAN session.
func (d *Database) Scan(cursor value.ScanCursor, p string, count int) ([]string, value.ScanCursor) {
	d.mu.Lock()
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		if !d.expireIfDue(k) {
			keys = append(keys, k)
		}
	}
	d.mu.Unlock()
	sort.Strings(keys)
	next, page := value.ScanPage(keys, cursor, count)
	if p == "" || p == "*" {
		return page, next
	}
	matched := make([]string, 0, len(page))
	for _, k := range page {
		if pattern.Match(p, k) {
			matched = append(matched, k)
		}
	}
	return matched, next
}

// Size returns the number of live keys, evicting due expirations along
// the way (matching DBSIZE's behavior of not counting logically-expired
// keys even before the active sweep reaches them).
func (d *Database) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.entries {
		d.expireIfDue(k)
	}
	return len(d.entries)
}

// Flush removes every key in the namespace.
func (d *Database) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.entries {
		d.touch(k)
	}
	d.entries = make(map[string]value.Value)
	d.expires = newExpireScheduler()
}

// BlockOn parks the caller on key for a blocking command, returning a
// channel woken by the next write that touches key and a cancel func the
// caller must run once it stops waiting.
func (d *Database) BlockOn(key string) (wake <-chan struct{}, cancel func()) {
	return d.blockers.Wait(key)
}

// HasBlockers reports whether any client is parked waiting on key.
func (d *Database) HasBlockers(key string) bool {
	return d.blockers.HasWaiters(key)
}

// sweepExpired evicts every key whose expiration is due as of now. Called
// periodically by Store.runActiveExpireCycle; returns the count evicted.
func (d *Database) sweepExpired(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for {
		key, when, ok := d.expires.peek()
		if !ok || when.After(now) {
			break
		}
		d.removeLocked(key)
		n++
	}
	return n
}

// keysForPattern reports whether a literal key matches pattern p without
// allocating a full Keys() scan. Nothing in the module calls it.
func keysForPattern(p, key string) bool {
	if !strings.ContainsAny(p, "*?[") {
		return p == key
	}
	return pattern.Match(p, key)
}
