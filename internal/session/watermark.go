package session

import (
	"sync/atomic"
	"time"
)

// LogoutWatermark is the revocation cutoff consulted on every verification:
// any session token issued before the cutoff is invalid regardless of its own
// expiry.
//
// The cutoff is a single process-wide value. Advancing it (a "log out
// everywhere" action) therefore invalidates the sessions of every user in the
// process, not only the acting user's. The interface exists so a per-user
// store can replace the process-wide value without touching call sites.
type LogoutWatermark interface {
	// Cutoff returns the current cutoff, or the zero time when none is set.
	Cutoff() time.Time
	// Advance moves the cutoff forward to t. Moves backward are ignored.
	Advance(t time.Time)
}

// MemoryWatermark is an in-process LogoutWatermark. Advance-only,
// last-write-wins; safe for concurrent use without locking.
type MemoryWatermark struct {
	ns atomic.Int64
}

// NewMemoryWatermark returns a watermark with no cutoff set.
func NewMemoryWatermark() *MemoryWatermark {
	return &MemoryWatermark{}
}

// Cutoff returns the current cutoff, or the zero time when unset.
func (w *MemoryWatermark) Cutoff() time.Time {
	n := w.ns.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Advance moves the cutoff forward to t; earlier values are ignored.
func (w *MemoryWatermark) Advance(t time.Time) {
	n := t.UnixNano()
	for {
		cur := w.ns.Load()
		if n <= cur {
			return
		}
		if w.ns.CompareAndSwap(cur, n) {
			return
		}
	}
}
