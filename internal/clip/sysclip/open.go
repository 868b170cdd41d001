package sysclip

import (
	"log/slog"

	"go.klb.dev/glean/internal/clip"
)

// Open returns a Bridge over the system clipboard, or over an in-process
// clipboard when the system one cannot be initialised (no display server,
// container, cgo disabled).
func Open() *clip.Bridge {
	b, err := New()
	if err != nil {
		slog.Warn("system clipboard unavailable, running headless", "err", err)
		return clip.NewBridge(clip.NewMemory(""))
	}
	return clip.NewBridge(b)
}
