// Package input synthesizes the key chords glean needs: copy, paste and
// enter. The per-OS modifier mapping is picked once, when the Keyboard is
// built; the key events themselves are sent by a Driver.
package input

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrSimulationFailed is returned when the OS rejected or ignored a
// synthetic key event. It is never fatal.
var ErrSimulationFailed = errors.New("input simulation failed")

// Simulator is the capability the rest of glean depends on.
type Simulator interface {
	Copy() error
	Paste() error
	PressEnter() error
}

// Driver sends one key press, holding mods while it does.
type Driver interface {
	Name() string
	KeyTap(key string, mods ...string) error
}

// Chord is a key plus the modifiers held while pressing it.
type Chord struct {
	Key  string
	Mods []string
}

func (c Chord) String() string {
	if len(c.Mods) == 0 {
		return c.Key
	}
	return strings.Join(c.Mods, "+") + "+" + c.Key
}

// Keymap holds the chords for one platform.
type Keymap struct {
	Copy  Chord
	Paste Chord
	Enter Chord
}

// KeymapFor returns the chords for goos: Cmd on macOS, Ctrl elsewhere.
func KeymapFor(goos string) Keymap {
	mod := "ctrl"
	if goos == "darwin" {
		mod = "cmd"
	}
	return Keymap{
		Copy:  Chord{Key: "c", Mods: []string{mod}},
		Paste: Chord{Key: "v", Mods: []string{mod}},
		Enter: Chord{Key: "enter"},
	}
}

// Keyboard implements Simulator on top of a Driver.
type Keyboard struct {
	driver Driver
	keys   Keymap
}

// New returns a Keyboard using the keymap for the running OS.
func New(d Driver) *Keyboard {
	return NewWithKeymap(d, KeymapFor(runtime.GOOS))
}

// NewWithKeymap returns a Keyboard using km.
func NewWithKeymap(d Driver, km Keymap) *Keyboard {
	return &Keyboard{driver: d, keys: km}
}

// Keymap returns the chords in use.
func (k *Keyboard) Keymap() Keymap { return k.keys }

func (k *Keyboard) Copy() error       { return k.tap("copy", k.keys.Copy) }
func (k *Keyboard) Paste() error      { return k.tap("paste", k.keys.Paste) }
func (k *Keyboard) PressEnter() error { return k.tap("enter", k.keys.Enter) }

func (k *Keyboard) tap(action string, c Chord) error {
	if err := k.driver.KeyTap(c.Key, c.Mods...); err != nil {
		slog.Warn("key chord rejected",
			"action", action,
			"chord", c.String(),
			"driver", k.driver.Name(),
			"err", err,
		)
		if errors.Is(err, ErrSimulationFailed) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrSimulationFailed, c, err)
	}
	slog.Debug("key chord sent", "action", action, "chord", c.String())
	return nil
}

// Unsupported is a Driver for builds that cannot synthesize input.
type Unsupported struct{ Reason string }

func (u Unsupported) Name() string { return "unsupported" }

func (u Unsupported) KeyTap(key string, _ ...string) error {
	return fmt.Errorf("%w: %s", ErrSimulationFailed, u.Reason)
}
