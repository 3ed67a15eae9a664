// Package eventlog is a small in-memory ring buffer of recently broadcast
// events per room, backing the debug endpoint described in SPEC_FULL.md's
// "Room listing & stats HTTP surface" supplement. It is not a durability
// layer: a process restart loses it, same as every other piece of this
// server's state.
package eventlog

import (
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/game"
)

// Entry is one retained broadcast event, timestamped at record time.
type Entry struct {
	Sequence  int64     `json:"sequence"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Recorded  time.Time `json:"recorded_at"`
}

// Ring retains up to cap entries, oldest dropped first. Safe for concurrent
// use; intended to be shared by a room's Broadcaster wrapper and read by
// the HTTP debug handler.
type Ring struct {
	mu   sync.Mutex
	cap  int
	buf  []Entry
	next int
}

// NewRing creates a ring holding at most capacity entries. A non-positive
// capacity disables recording (Entries always returns nil).
func NewRing(capacity int) *Ring {
	return &Ring{cap: capacity}
}

// Record appends ev, evicting the oldest entry once cap is reached.
func (r *Ring) Record(ev game.Event) {
	if r == nil || r.cap <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := Entry{Sequence: ev.Sequence, Type: ev.Type, Data: ev.Data, Recorded: time.Now()}
	if len(r.buf) < r.cap {
		r.buf = append(r.buf, entry)
		return
	}
	r.buf[r.next] = entry
	r.next = (r.next + 1) % r.cap
}

// Entries returns the retained events in oldest-to-newest order.
func (r *Ring) Entries() []Entry {
	if r == nil || r.cap <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) < r.cap {
		out := make([]Entry, len(r.buf))
		copy(out, r.buf)
		return out
	}
	out := make([]Entry, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
