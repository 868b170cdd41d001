// Package autoinput streams a growing response into the focused
// application. Producers push the full response text each time it grows;
// a single worker types only the part that has not been typed yet.
package autoinput

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	infinity "github.com/Code-Hex/go-infinity-channel"

	"go.klb.dev/glean/internal/logging"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("auto input stream closed")

// Emitter types text into the target application.
type Emitter interface {
	Emit(text string) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(text string) error

func (f EmitterFunc) Emit(text string) error { return f(text) }

// Diff returns what has to be typed to go from prev to next. When prev is
// a prefix of next only the new tail is returned; otherwise the stream was
// restarted and all of next is returned.
func Diff(prev, next string) (delta string, incremental bool) {
	if suffix, ok := strings.CutPrefix(next, prev); ok {
		return suffix, true
	}
	return next, false
}

// Streamer owns the inbound queue and the worker consuming it. The worker
// starts on the first Send and stops after Close once the queue is drained.
type Streamer struct {
	emit   Emitter
	settle time.Duration

	mu     sync.Mutex
	closed bool
	queue  *infinity.Channel[string]
	done   chan struct{}
}

// New returns a Streamer that waits settle before each emission.
func New(e Emitter, settle time.Duration) *Streamer {
	return &Streamer{
		emit:   e,
		settle: settle,
		done:   make(chan struct{}),
	}
}

// Send queues value, the full response text so far. It never waits for
// an emission. Values from one caller are emitted in the order sent.
func (s *Streamer) Send(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.queue == nil {
		s.queue = infinity.NewChannel[string]()
		go s.run(s.queue.Out())
		slog.Debug("auto input worker started")
	}
	s.queue.In() <- value
	return nil
}

// Started reports whether the worker has been started.
func (s *Streamer) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue != nil
}

// Close stops accepting values. Values already queued are still emitted.
func (s *Streamer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.queue == nil {
		close(s.done)
		return
	}
	s.queue.Close()
}

// Done is closed once the worker has exited after Close.
func (s *Streamer) Done() <-chan struct{} { return s.done }

func (s *Streamer) run(values <-chan string) {
	defer close(s.done)
	var content string
	for value := range values {
		delta, incremental := Diff(content, value)
		content = value
		if delta == "" {
			continue
		}
		time.Sleep(s.settle)
		slog.Debug("auto input emit", "incremental", incremental, "chars", len(delta))
		if err := s.emit.Emit(delta); err != nil {
			slog.Warn("auto input emit failed", "incremental", incremental, "err", err)
			continue
		}
		logging.DebugText("auto input emitted", delta)
	}
	slog.Debug("auto input worker stopped")
}
