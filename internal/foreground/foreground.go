// Package foreground remembers which OS window had focus right before the
// last capture gesture, so responses can be routed back to it.
package foreground

import (
	"log/slog"
	"sync/atomic"
)

// Handle is an opaque platform window identifier. 0 means none/unknown.
type Handle int64

// None is the sentinel for "no window".
const None Handle = 0

// QueryFunc asks the OS for the currently focused window, returning None
// on failure.
type QueryFunc func() Handle

// Tracker holds the last known foreground window. Gestures are serialized
// by the user, so a single last-write-wins value is enough.
type Tracker struct {
	query   QueryFunc
	current atomic.Int64
}

// NewTracker returns a Tracker that queries the OS with q. q may be nil,
// in which case Query always reports None.
func NewTracker(q QueryFunc) *Tracker {
	return &Tracker{query: q}
}

// Query returns the window focused right now without recording it.
func (t *Tracker) Query() Handle {
	if t.query == nil {
		return None
	}
	return t.query()
}

// Record stores h unless it is None, which would discard the last real value.
func (t *Tracker) Record(h Handle) {
	if h == None {
		return
	}
	t.current.Store(int64(h))
}

// Current returns the recorded handle.
func (t *Tracker) Current() Handle {
	return Handle(t.current.Load())
}

// Capture queries the OS, records the result and returns it.
func (t *Tracker) Capture() Handle {
	h := t.Query()
	slog.Debug("foreground window", "handle", int64(h))
	t.Record(h)
	return h
}
