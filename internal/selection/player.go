package selection

import (
	"fmt"
	"log/slog"
	"time"

	"go.klb.dev/glean/internal/clip"
	"go.klb.dev/glean/internal/input"
)

// Player types text into the focused application by putting it on the
// clipboard and synthesizing a paste.
type Player struct {
	clip  *clip.Bridge
	keys  input.Simulator
	drain time.Duration
}

// NewPlayer returns a Player. drain is how long the pasted text stays on
// the clipboard before the user's content is put back, so the target
// application has time to read it.
func NewPlayer(b *clip.Bridge, keys input.Simulator, drain time.Duration) *Player {
	return &Player{clip: b, keys: keys, drain: drain}
}

// Play pastes text and restores the clipboard. Empty text is a no-op.
func (p *Player) Play(text string) error {
	if text == "" {
		return nil
	}
	return p.clip.Session(func(tx clip.Tx) (err error) {
		saved, err := readText(tx)
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		defer func() {
			if werr := tx.Write(saved); werr != nil {
				slog.Warn("clipboard restore failed", "err", werr)
				if err == nil {
					err = fmt.Errorf("restore clipboard: %w", werr)
				}
			}
		}()

		if err := tx.Write(text); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		if err := p.keys.Paste(); err != nil {
			return err
		}
		time.Sleep(p.drain)
		return nil
	})
}
