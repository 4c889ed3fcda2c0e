package store

import "strconv"

// NotifyFlags enables keyspace-notification classes, mirroring the
// notify-keyspace-events config string's per-class letters (spec.md §3
// names keyspace notifications as part of the Pub/Sub coordinator).
type NotifyFlags struct {
	KeyEvent bool // 'E': __keyevent@<db>__:<event> -> key
	KeySpace bool // 'K': __keyspace@<db>__:<key> -> event
}

// Notify publishes a keyspace notification for event on key in this
// namespace, if the store's NotifyFlags enable it. Safe to call under no
// lock; Publish takes its own.
func (s *Store) Notify(dbIndex int, key, event string, flags NotifyFlags) {
	if !flags.KeySpace && !flags.KeyEvent {
		return
	}
	idx := strconv.Itoa(dbIndex)
	if flags.KeySpace {
		s.pubsub.Publish("__keyspace@"+idx+"__:"+key, []byte(event))
	}
	if flags.KeyEvent {
		s.pubsub.Publish("__keyevent@"+idx+"__:"+event, []byte(key))
	}
}
