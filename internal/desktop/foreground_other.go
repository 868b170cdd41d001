//go:build !cgo && !windows

package desktop

import "go.klb.dev/glean/internal/foreground"

// ForegroundWindow cannot be queried without cgo.
func ForegroundWindow() foreground.Handle { return 0 }

// Activator is nil here; hiding the popup hands focus back on its own.
func Activator() func(foreground.Handle) error { return nil }
