//go:build !cgo

package desktop

import "go.klb.dev/glean/internal/input"

// Keyboard returns a driver that rejects every key press.
func Keyboard() input.Driver {
	return input.Unsupported{Reason: "built without cgo"}
}

// Cursor is unknown without cgo.
func Cursor() (x, y int) { return 0, 0 }
