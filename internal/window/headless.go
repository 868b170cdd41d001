package window

import (
	"log/slog"
	"sync"
)

// Headless is a Manager for daemons running without a window toolkit. It
// keeps track of what would be on screen and logs every call.
type Headless struct {
	mu      sync.Mutex
	visible map[string]bool
	focused string
}

// NewHeadless returns an empty Headless manager.
func NewHeadless() *Headless {
	return &Headless{visible: make(map[string]bool)}
}

func (h *Headless) Show(id string) error {
	h.mu.Lock()
	h.visible[id] = true
	h.mu.Unlock()
	slog.Info("window show", "window", id)
	return nil
}

func (h *Headless) Hide(id string) error {
	h.mu.Lock()
	h.visible[id] = false
	if h.focused == id {
		h.focused = ""
	}
	h.mu.Unlock()
	slog.Info("window hide", "window", id)
	return nil
}

func (h *Headless) SetPosition(id string, x, y int) error {
	slog.Debug("window position", "window", id, "x", x, "y", y)
	return nil
}

func (h *Headless) SetFocus(id string) error {
	h.mu.Lock()
	h.focused = id
	h.mu.Unlock()
	slog.Debug("window focus", "window", id)
	return nil
}

// Visible reports whether id is shown.
func (h *Headless) Visible(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible[id]
}

// Focused returns the focused window id, or "".
func (h *Headless) Focused() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}
