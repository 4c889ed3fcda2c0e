// Package persistence backs the SAVE/BGSAVE/BGREWRITEAOF/LASTSAVE stub
// surface spec.md §6 describes: "the core only records last_save_time
// and delegates actual I/O". It owns that timestamp and the in-flight
// flag BGSAVE toggles, so the dispatcher no longer fakes
// these replies inline.
package persistence

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder tracks the last successful save time and whether a background
// save is currently "running" (simulated — nimbusdb has no RDB or
// AOF writer; see DESIGN.md for why this core stops at the stub spec.md
// §6 asks for).
type Recorder struct {
	log *zap.Logger

	mu       sync.Mutex
	lastSave time.Time
	inFlight bool
}

// New builds a Recorder whose last-save time starts at process boot,
// mirroring real Redis reporting the load time of an (absent) RDB file.
func New(log *zap.Logger) *Recorder {
	return &Recorder{log: log.Named("persistence"), lastSave: time.Now()}
}

// LastSave implements LASTSAVE: Unix seconds of the last recorded save.
func (r *Recorder) LastSave() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSave.Unix()
}

// Save implements the synchronous SAVE command: records now as the save
// point and returns immediately.
func (r *Recorder) Save() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSave = time.Now()
	r.log.Debug("save point recorded", zap.Time("at", r.lastSave))
}

// BGSave implements BGSAVE: a synchronous stand-in for what would be an
// asynchronous background fork-and-dump in real Redis. The in-flight flag
// is set for the duration of the call and read through InProgress (the
// admin HTTP /metrics bgsave_in_progress field); no I/O actually happens.
func (r *Recorder) BGSave() {
	r.mu.Lock()
	r.inFlight = true
	r.mu.Unlock()

	r.Save()

	r.mu.Lock()
	r.inFlight = false
	r.mu.Unlock()
}

// BGRewriteAOF implements BGREWRITEAOF as a logged no-op: it touches
// neither the in-flight flag nor the last-save time.
func (r *Recorder) BGRewriteAOF() {
	r.log.Debug("aof rewrite acknowledged (no-op: no AOF writer in this core)")
}

// InProgress reports whether a BGSave is currently (simulated) running.
func (r *Recorder) InProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}
