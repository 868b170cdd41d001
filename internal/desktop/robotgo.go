//go:build cgo

package desktop

import (
	"github.com/go-vgo/robotgo"

	"go.klb.dev/glean/internal/input"
)

type robotDriver struct{}

// Keyboard returns the robotgo input driver.
func Keyboard() input.Driver { return robotDriver{} }

func (robotDriver) Name() string { return "robotgo" }

func (robotDriver) KeyTap(key string, mods ...string) error {
	args := make([]interface{}, len(mods))
	for i, m := range mods {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

// Cursor returns the mouse position in screen coordinates.
func Cursor() (x, y int) {
	return robotgo.Location()
}
