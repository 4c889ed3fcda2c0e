package store

// WatchSet is a client's snapshot of (key, version) pairs established by
// WATCH, checked atomically at EXEC time. Grounded on Database.versions:
// every mutating Database method bumps a key's version, including a
// lazy-expiration-driven delete, so a watcher sees a conflict exactly when
// real Redis would abort the transaction.
type WatchSet struct {
	db  *Database
	at  map[string]uint64
}

// NewWatchSet begins watching keys against db, capturing their current
// versions.
func (d *Database) NewWatchSet(keys ...string) *WatchSet {
	ws := &WatchSet{db: d, at: make(map[string]uint64, len(keys))}
	ws.Add(keys...)
	return ws
}

// Add extends the watch set with additional keys, capturing their current
// versions. WATCH issued again before EXEC/DISCARD is additive in real
// Redis, so repeated Add calls are expected.
func (ws *WatchSet) Add(keys ...string) {
	for _, key := range keys {
		if _, already := ws.at[key]; already {
			continue
		}
		ws.at[key] = ws.db.Version(key)
	}
}

// Dirty reports whether any watched key's version has moved since it was
// added — EXEC must abort (return Nil) when this is true.
func (ws *WatchSet) Dirty() bool {
	for key, version := range ws.at {
		if ws.db.Version(key) != version {
			return true
		}
	}
	return false
}

// Keys returns the watched key set, for CLIENT/DEBUG introspection.
func (ws *WatchSet) Keys() []string {
	out := make([]string, 0, len(ws.at))
	for k := range ws.at {
		out = append(out, k)
	}
	return out
}
