//go:build (darwin && cgo) || (linux && cgo) || windows

package hotkey

import (
	"fmt"
	"sync"

	xhotkey "golang.design/x/hotkey"
)

var keys = map[string]xhotkey.Key{
	"space":  xhotkey.KeySpace,
	"tab":    xhotkey.KeyTab,
	"return": xhotkey.KeyReturn,
	"a":      xhotkey.KeyA, "b": xhotkey.KeyB, "c": xhotkey.KeyC, "d": xhotkey.KeyD,
	"e": xhotkey.KeyE, "f": xhotkey.KeyF, "g": xhotkey.KeyG, "h": xhotkey.KeyH,
	"i": xhotkey.KeyI, "j": xhotkey.KeyJ, "k": xhotkey.KeyK, "l": xhotkey.KeyL,
	"m": xhotkey.KeyM, "n": xhotkey.KeyN, "o": xhotkey.KeyO, "p": xhotkey.KeyP,
	"q": xhotkey.KeyQ, "r": xhotkey.KeyR, "s": xhotkey.KeyS, "t": xhotkey.KeyT,
	"u": xhotkey.KeyU, "v": xhotkey.KeyV, "w": xhotkey.KeyW, "x": xhotkey.KeyX,
	"y": xhotkey.KeyY, "z": xhotkey.KeyZ,
	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,
	"f1": xhotkey.KeyF1, "f2": xhotkey.KeyF2, "f3": xhotkey.KeyF3, "f4": xhotkey.KeyF4,
	"f5": xhotkey.KeyF5, "f6": xhotkey.KeyF6, "f7": xhotkey.KeyF7, "f8": xhotkey.KeyF8,
	"f9": xhotkey.KeyF9, "f10": xhotkey.KeyF10, "f11": xhotkey.KeyF11, "f12": xhotkey.KeyF12,
}

// System returns a Factory backed by the OS hotkey API.
func System() Factory {
	return func(c Combo) (Backend, error) {
		key, ok := keys[c.Key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, c.Key)
		}
		mods := make([]xhotkey.Modifier, 0, len(c.Mods))
		for _, m := range c.Mods {
			mod, ok := platformMods[m]
			if !ok {
				return nil, fmt.Errorf("%w: modifier %q not available here", ErrInvalid, m)
			}
			mods = append(mods, mod)
		}
		return &system{mods: mods, key: key}, nil
	}
}

// system wraps golang.design/x/hotkey. The OS hotkey is created in
// Register so nothing is spawned at construction time.
type system struct {
	hk        *xhotkey.Hotkey
	mods      []xhotkey.Modifier
	key       xhotkey.Key
	keyCh     chan struct{}
	closeOnce sync.Once
}

func (s *system) Register() error {
	s.hk = xhotkey.New(s.mods, s.key)
	if err := s.hk.Register(); err != nil {
		_ = s.hk.Unregister()
		s.hk = nil
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	s.keyCh = make(chan struct{}, 4)
	src := s.hk.Keydown()
	go func() {
		for range src {
			select {
			case s.keyCh <- struct{}{}:
			default:
			}
		}
		s.closeOnce.Do(func() { close(s.keyCh) })
	}()
	return nil
}

func (s *system) Unregister() error {
	if s.hk == nil {
		return nil
	}
	return s.hk.Unregister()
}

func (s *system) Keydown() <-chan struct{} { return s.keyCh }
