//go:build windows

package desktop

import (
	"fmt"

	"golang.org/x/sys/windows"

	"go.klb.dev/glean/internal/foreground"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

// ForegroundWindow returns the HWND holding focus, or 0.
func ForegroundWindow() foreground.Handle {
	if err := procGetForegroundWindow.Find(); err != nil {
		return 0
	}
	hwnd, _, _ := procGetForegroundWindow.Call()
	return foreground.Handle(hwnd)
}

// Activator returns a function bringing a window back to the foreground.
func Activator() func(foreground.Handle) error {
	return func(h foreground.Handle) error {
		if err := procSetForegroundWindow.Find(); err != nil {
			return err
		}
		ok, _, err := procSetForegroundWindow.Call(uintptr(h))
		if ok == 0 {
			return fmt.Errorf("SetForegroundWindow %#x: %w", int64(h), err)
		}
		return nil
	}
}
