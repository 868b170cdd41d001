// Package selection extracts the text a user has selected in whatever
// application has focus, by synthesizing a copy and diffing the clipboard,
// and plays text back into that application through the clipboard.
//
// Every operation here holds the clipboard for its whole
// snapshot/mutate/restore cycle and puts the user's clipboard back before
// returning.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.klb.dev/glean/internal/clip"
	"go.klb.dev/glean/internal/input"
	"go.klb.dev/glean/internal/logging"
)

// DefaultSettleDelay is how long to wait for synthesized input to reach
// the focused application.
const DefaultSettleDelay = 100 * time.Millisecond

var (
	// ErrNoSelection means the copy did not change the clipboard: nothing
	// was selected. It is not a hard failure.
	ErrNoSelection = errors.New("no selected text found")
	// ErrEmptyCache means no selection has been captured yet.
	ErrEmptyCache = errors.New("empty selected content")
)

// Capturer captures the current selection.
type Capturer struct {
	clip   *clip.Bridge
	keys   input.Simulator
	settle time.Duration
}

// NewCapturer returns a Capturer. settle is the wait between the
// synthesized copy and the second clipboard read.
func NewCapturer(b *clip.Bridge, keys input.Simulator, settle time.Duration) *Capturer {
	return &Capturer{clip: b, keys: keys, settle: settle}
}

// Capture returns the selected text, ErrNoSelection when nothing was
// selected, or an error wrapping clip.ErrUnavailable. On every path the
// clipboard ends up holding what it held before the call.
func (c *Capturer) Capture() (string, error) {
	var result string
	err := c.clip.Session(func(tx clip.Tx) (err error) {
		baseline, err := readText(tx)
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		defer func() {
			if werr := tx.Write(baseline); werr != nil {
				slog.Warn("clipboard restore failed", "err", werr)
				if err == nil {
					err = fmt.Errorf("restore clipboard: %w", werr)
				}
			}
		}()

		// Best effort: a rejected copy just means the clipboard won't change.
		_ = c.keys.Copy()
		time.Sleep(c.settle)

		candidate, err := readText(tx)
		if err != nil {
			return fmt.Errorf("read clipboard after copy: %w", err)
		}
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" || trimmed == strings.TrimSpace(baseline) {
			return ErrNoSelection
		}
		result = candidate
		return nil
	})
	if err != nil {
		slog.Debug("capture failed", "err", err)
		return "", err
	}
	logging.DebugText("selection captured", result)
	return result, nil
}

// readText treats an empty or non-text clipboard as "".
func readText(tx clip.Tx) (string, error) {
	text, err := tx.Read()
	if errors.Is(err, clip.ErrNotText) {
		return "", nil
	}
	return text, err
}

// CopyContent puts text on the clipboard and leaves it there.
func CopyContent(b *clip.Bridge, text string) error {
	if err := b.Write(text); err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	return nil
}

// Cache keeps the most recent selection for the popup to fetch.
type Cache struct {
	mu   sync.RWMutex
	text string
}

// Store replaces the cached selection.
func (c *Cache) Store(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
}

// Get returns the cached selection trimmed, or ErrEmptyCache.
func (c *Cache) Get() (string, error) {
	c.mu.RLock()
	text := strings.TrimSpace(c.text)
	c.mu.RUnlock()
	if text == "" {
		return "", ErrEmptyCache
	}
	return text, nil
}
