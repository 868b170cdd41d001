// Package hotkey registers the global capture gesture.
//
// Combos are written as "ctrl+shift+space": any number of modifiers and a
// final key, joined by "+". Parsing is platform independent; only the
// Backend returned by System touches the OS.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrConflict is returned when another application already holds the combo.
var ErrConflict = errors.New("hotkey: key combination already registered by another application")

// ErrInvalid is returned when a combo string cannot be parsed.
var ErrInvalid = errors.New("hotkey: invalid key combination")

// ErrUnsupported is returned by System on builds without a hotkey backend.
var ErrUnsupported = errors.New("hotkey: global hotkeys not supported in this build")

// Combo is a parsed key combination. Mods hold canonical names: ctrl,
// shift, alt, super.
type Combo struct {
	Mods []string
	Key  string
}

func (c Combo) String() string {
	return strings.Join(append(append([]string(nil), c.Mods...), c.Key), "+")
}

var modAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"super":   "super",
	"cmd":     "super",
	"command": "super",
	"win":     "super",
	"meta":    "super",
}

var keyAliases = map[string]string{
	"space":  "space",
	"tab":    "tab",
	"return": "return",
	"enter":  "return",
}

func validKey(k string) bool {
	if _, ok := keyAliases[k]; ok {
		return true
	}
	if len(k) == 1 && (k[0] >= 'a' && k[0] <= 'z' || k[0] >= '0' && k[0] <= '9') {
		return true
	}
	if rest, ok := strings.CutPrefix(k, "f"); ok && rest != "" && rest[0] != '0' {
		n, err := strconv.Atoi(rest)
		return err == nil && n >= 1 && n <= 12
	}
	return false
}

// Parse parses a combo string. At least one modifier is required.
func Parse(s string) (Combo, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) < 2 {
		return Combo{}, fmt.Errorf("%w: %q (need at least one modifier)", ErrInvalid, s)
	}
	key := strings.TrimSpace(parts[len(parts)-1])
	if !validKey(key) {
		return Combo{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	if k, ok := keyAliases[key]; ok {
		key = k
	}

	var mods []string
	seen := map[string]bool{}
	for _, p := range parts[:len(parts)-1] {
		m, ok := modAliases[strings.TrimSpace(p)]
		if !ok {
			return Combo{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalid, p)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		mods = append(mods, m)
	}
	return Combo{Mods: mods, Key: key}, nil
}

// Backend is one registered OS hotkey.
type Backend interface {
	Register() error
	Unregister() error
	Keydown() <-chan struct{}
}

// Factory builds a Backend for a combo.
type Factory func(Combo) (Backend, error)

// Service keeps one combo registered and calls a trigger on every press.
type Service struct {
	factory Factory

	mu           sync.Mutex
	backend      Backend
	combo        Combo
	registered   atomic.Bool
	shuttingDown atomic.Bool
	parent       context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	onTrigger    func()
}

// NewService returns a Service creating backends with f.
func NewService(f Factory) *Service {
	return &Service{factory: f}
}

// Start registers combo and calls onTrigger on each press until ctx is
// cancelled or Stop is called.
func (s *Service) Start(ctx context.Context, combo string, onTrigger func()) error {
	c, err := Parse(combo)
	if err != nil {
		return err
	}
	b, err := s.factory(c)
	if err != nil {
		return err
	}
	if err := b.Register(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = ctx
	s.onTrigger = onTrigger
	s.listen(b, c)
	slog.Info("hotkey registered", "combo", c)
	return nil
}

// Reregister swaps to a new combo. The new combo is registered before the
// old one is released, so on error the old one stays live.
func (s *Service) Reregister(combo string) error {
	c, err := Parse(combo)
	if err != nil {
		return err
	}
	b, err := s.factory(c)
	if err != nil {
		return err
	}
	if err := b.Register(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.combo
	if s.cancel != nil {
		s.cancel()
	}
	s.listen(b, c)
	slog.Info("hotkey re-registered", "from", old, "to", c)
	return nil
}

// listen starts the goroutine for a registered backend. s.mu must be held.
func (s *Service) listen(b Backend, c Combo) {
	parent := s.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.backend, s.combo, s.cancel, s.done = b, c, cancel, done
	s.registered.Store(true)

	trigger := s.onTrigger
	keydown := b.Keydown()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("hotkey listener recovered", "combo", c, "panic", r)
			}
			if !s.shuttingDown.Load() {
				_ = b.Unregister()
			}
			s.mu.Lock()
			if s.backend == b {
				s.registered.Store(false)
			}
			s.mu.Unlock()
			slog.Debug("hotkey unregistered", "combo", c)
			close(done)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				slog.Debug("hotkey triggered", "combo", c)
				if trigger != nil {
					trigger()
				}
			}
		}
	}()
}

// Stop releases the hotkey and waits briefly for the listener to exit.
func (s *Service) Stop() {
	s.shuttingDown.Store(true)

	s.mu.Lock()
	b, done := s.backend, s.done
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if b != nil {
		if err := b.Unregister(); err != nil {
			slog.Debug("hotkey unregister", "err", err)
		}
	}
	if done != nil {
		select {
		case <-done:
		case <-time.After(200 * time.Millisecond):
			slog.Debug("hotkey listener did not exit in time")
		}
	}
	s.registered.Store(false)
}

// IsRegistered reports whether a combo is currently registered.
func (s *Service) IsRegistered() bool { return s.registered.Load() }

// Combo returns the active combo.
func (s *Service) Combo() Combo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combo
}
