//go:build cgo || windows

// Package sysclip adapts golang.design/x/clipboard to clip.Backend.
package sysclip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"go.klb.dev/glean/internal/clip"
)

var (
	initOnce sync.Once
	initErr  error
)

type backend struct{}

// New initialises golang.design/x/clipboard once per process.
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never touch the clipboard don't fail on headless hosts.
func New() (clip.Backend, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return nil, fmt.Errorf("%w: %v", clip.ErrUnavailable, initErr)
	}
	return backend{}, nil
}

func (backend) Name() string { return "system clipboard" }

func (backend) ReadText() (string, error) {
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", clip.ErrNotText
	}
	return string(data), nil
}

func (backend) WriteText(text string) error {
	// The returned channel fires when another application takes the
	// clipboard over; nothing here cares.
	_ = clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
