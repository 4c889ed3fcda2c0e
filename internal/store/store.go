package store

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// activeExpireInterval is how often Store sweeps every namespace for due
// expirations in the background, independent of the lazy per-access check
// every Database read/write already performs.
const activeExpireInterval = 100 * time.Millisecond

// Store aggregates the server's SELECT-able namespaces plus the
// server-wide Pub/Sub table, the way the teacher's Repository aggregates
// its per-resource repositories behind one constructor.
type Store struct {
	log    *zap.Logger
	dbs    []*Database
	pubsub *PubSub

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Store with n independently-indexed namespaces and starts
// its background active-expire cycle.
func New(n int, log *zap.Logger) *Store {
	if n <= 0 {
		n = 16
	}
	log = log.Named("store")
	dbs := make([]*Database, n)
	for i := range dbs {
		dbs[i] = newDatabase(i, log)
	}
	s := &Store{
		log:    log,
		dbs:    dbs,
		pubsub: newPubSub(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.runActiveExpireCycle()
	return s
}

// Select returns the namespace at idx, or ok=false if idx is out of range
// (the dispatcher turns that into the SELECT "DB index is out of range"
// error).
func (s *Store) Select(idx int) (*Database, bool) {
	if idx < 0 || idx >= len(s.dbs) {
		return nil, false
	}
	return s.dbs[idx], true
}

// NumDatabases returns the configured namespace count.
func (s *Store) NumDatabases() int { return len(s.dbs) }

// PubSub returns the server-wide Pub/Sub table.
func (s *Store) PubSub() *PubSub { return s.pubsub }

// FlushAll clears every namespace.
func (s *Store) FlushAll() {
	for _, db := range s.dbs {
		db.Flush()
	}
}

// Close stops the background active-expire cycle. Safe to call more than
// once.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

// runActiveExpireCycle periodically sweeps every namespace's expireScheduler
// so keys that nobody ever reads again still get reclaimed, same intent as
// real Redis's probabilistic active-expire cycle, simplified here to a flat
// per-tick sweep since an in-memory heap makes "is anything due" O(1).
func (s *Store) runActiveExpireCycle() {
	defer close(s.doneCh)
	t := time.NewTicker(activeExpireInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-t.C:
			for _, db := range s.dbs {
				if n := db.sweepExpired(now); n > 0 {
					s.log.Debug("active expire cycle evicted keys",
						zap.Int("db", db.Index()),
						zap.Int("count", n),
					)
				}
			}
		}
	}
}
