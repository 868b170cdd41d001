// Package clip provides scoped text access to the system clipboard.
//
// The OS-backed implementation lives in package sysclip; Memory is the
// in-process clipboard used by headless daemons and tests.
//
// The clipboard is one global resource shared with every other application,
// so all access goes through a Bridge, which serializes callers and lets a
// caller hold the clipboard for a whole snapshot/mutate/restore cycle.
package clip

import (
	"errors"
	"sync"
)

var (
	// ErrUnavailable is returned when the OS clipboard cannot be opened.
	ErrUnavailable = errors.New("clipboard unavailable")
	// ErrNotText is returned when the clipboard is empty or holds no text.
	ErrNotText = errors.New("clipboard holds no text")
)

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard text, ErrNotText when there is none,
	// or ErrUnavailable when the clipboard could not be opened.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error
}

// Tx is the view of the clipboard handed to a Session callback.
type Tx interface {
	Read() (string, error)
	Write(text string) error
}

// Bridge owns a Backend and hands out exclusive sessions on it.
type Bridge struct {
	mu      sync.Mutex
	backend Backend
}

// NewBridge wraps b.
func NewBridge(b Backend) *Bridge {
	return &Bridge{backend: b}
}

// Name returns the backend name.
func (b *Bridge) Name() string { return b.backend.Name() }

// Session runs fn while holding the clipboard. The clipboard is released
// when fn returns, whatever it returns, and also if it panics.
func (b *Bridge) Session(fn func(tx Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(tx{b.backend})
}

// Read returns the clipboard text in a single-call session.
func (b *Bridge) Read() (string, error) {
	var text string
	err := b.Session(func(tx Tx) error {
		var err error
		text, err = tx.Read()
		return err
	})
	return text, err
}

// Write replaces the clipboard text in a single-call session.
func (b *Bridge) Write(text string) error {
	return b.Session(func(tx Tx) error { return tx.Write(text) })
}

type tx struct{ b Backend }

func (t tx) Read() (string, error)   { return t.b.ReadText() }
func (t tx) Write(text string) error { return t.b.WriteText(text) }
