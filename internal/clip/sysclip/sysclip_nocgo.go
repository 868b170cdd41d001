//go:build !cgo && !windows

package sysclip

import (
	"fmt"

	"go.klb.dev/glean/internal/clip"
)

// New always fails: golang.design/x/clipboard needs cgo outside Windows.
func New() (clip.Backend, error) {
	return nil, fmt.Errorf("%w: built without cgo", clip.ErrUnavailable)
}
