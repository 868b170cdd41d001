// Package desktop holds the OS adapters glean needs beyond the clipboard:
// key synthesis, the foreground window query and the cursor position.
//
//	robotgo.go             github.com/go-vgo/robotgo (cgo)
//	nocgo.go               stubs for builds without cgo
//	foreground_windows.go  user32 Get/SetForegroundWindow via golang.org/x/sys
//	foreground_robotgo.go  robotgo active window handle elsewhere
package desktop
