// Package window drives glean's popup through an external window manager.
//
// The popup is a two-state machine: Hidden until something asks to show
// it, Shown until it is hidden explicitly or loses focus. Window managers
// are generally not safe to call from arbitrary goroutines, so every call
// is funnelled through a Runner that executes it on the UI thread.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrWindowOperation wraps any failure reported by the window manager.
var ErrWindowOperation = errors.New("window operation failed")

// Manager is the window-manager collaborator.
type Manager interface {
	Show(id string) error
	Hide(id string) error
	SetPosition(id string, x, y int) error
	SetFocus(id string) error
}

// Runner executes fn on the thread that owns the window manager and
// returns once fn has run.
type Runner func(fn func())

// Inline runs fn on the calling goroutine. Use it only when the Manager is
// itself safe for concurrent use.
func Inline(fn func()) { fn() }

// State is the popup visibility.
type State int

const (
	Hidden State = iota
	Shown
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Guard is a reusable popup that hides itself when it loses focus.
type Guard struct {
	id  string
	wm  Manager
	run Runner

	mu    sync.Mutex
	state State
	x, y  int
}

// NewGuard returns a Hidden popup for window id. A nil run means Inline.
func NewGuard(id string, wm Manager, run Runner) *Guard {
	if run == nil {
		run = Inline
	}
	return &Guard{id: id, wm: wm, run: run}
}

// ID returns the window id.
func (g *Guard) ID() string { return g.id }

// State returns the current visibility.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Position returns the last requested position.
func (g *Guard) Position() (x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.x, g.y
}

// Show moves the popup to (x, y), shows it and focuses it.
func (g *Guard) Show(x, y int) error {
	var err error
	g.run(func() {
		g.mu.Lock()
		g.x, g.y = x, y
		g.mu.Unlock()

		if err = g.op("set position", g.wm.SetPosition(g.id, x, y)); err != nil {
			return
		}
		if err = g.op("show", g.wm.Show(g.id)); err != nil {
			return
		}
		g.setState(Shown)
		err = g.op("focus", g.wm.SetFocus(g.id))
	})
	return err
}

// Hide hides the popup. The popup counts as hidden afterwards even if the
// window manager reports an error, since a window that is gone is not
// visible either.
func (g *Guard) Hide() error {
	var err error
	g.run(func() {
		err = g.op("hide", g.wm.Hide(g.id))
		g.setState(Hidden)
	})
	return err
}

// FocusChanged handles a focus event for this window. Losing focus while
// shown hides the popup immediately.
func (g *Guard) FocusChanged(focused bool) {
	slog.Debug("popup focus changed", "window", g.id, "focused", focused)
	if focused || g.State() != Shown {
		return
	}
	_ = g.Hide()
}

func (g *Guard) setState(s State) {
	g.mu.Lock()
	prev := g.state
	g.state = s
	g.mu.Unlock()
	if prev != s {
		slog.Debug("popup state", "window", g.id, "from", prev, "to", s)
	}
}

func (g *Guard) op(name string, err error) error {
	if err == nil {
		return nil
	}
	slog.Warn("window operation failed", "window", g.id, "op", name, "err", err)
	return fmt.Errorf("%w: %s %s: %v", ErrWindowOperation, name, g.id, err)
}

// Raise shows and focuses window id through run. It is used for windows
// that are not focus-guarded, like the main chat window.
func Raise(run Runner, wm Manager, id string) error {
	if run == nil {
		run = Inline
	}
	var err error
	run(func() {
		if e := wm.Show(id); e != nil {
			err = fmt.Errorf("%w: show %s: %v", ErrWindowOperation, id, e)
			return
		}
		if e := wm.SetFocus(id); e != nil {
			err = fmt.Errorf("%w: focus %s: %v", ErrWindowOperation, id, e)
		}
	})
	if err != nil {
		slog.Warn("raise window failed", "window", id, "err", err)
	}
	return err
}
