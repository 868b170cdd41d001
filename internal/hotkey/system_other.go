//go:build !((darwin && cgo) || (linux && cgo) || windows)

package hotkey

// System returns a Factory that always fails with ErrUnsupported.
func System() Factory {
	return func(Combo) (Backend, error) { return nil, ErrUnsupported }
}
