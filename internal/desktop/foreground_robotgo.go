//go:build cgo && !windows

package desktop

import (
	"github.com/go-vgo/robotgo"

	"go.klb.dev/glean/internal/foreground"
)

// ForegroundWindow returns the handle of the active window, or 0.
func ForegroundWindow() foreground.Handle {
	return foreground.Handle(robotgo.GetHandle())
}

// Activator is nil here; hiding the popup hands focus back on its own.
func Activator() func(foreground.Handle) error { return nil }
