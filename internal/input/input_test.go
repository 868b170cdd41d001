package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tap struct {
	key  string
	mods []string
}

type recordingDriver struct {
	taps []tap
	err  error
}

func (d *recordingDriver) Name() string { return "recording" }

func (d *recordingDriver) KeyTap(key string, mods ...string) error {
	d.taps = append(d.taps, tap{key: key, mods: mods})
	return d.err
}

func TestKeymapFor(t *testing.T) {
	cases := []struct {
		goos string
		mod  string
	}{
		{"darwin", "cmd"},
		{"windows", "ctrl"},
		{"linux", "ctrl"},
		{"freebsd", "ctrl"},
	}
	for _, tc := range cases {
		t.Run(tc.goos, func(t *testing.T) {
			km := KeymapFor(tc.goos)
			assert.Equal(t, Chord{Key: "c", Mods: []string{tc.mod}}, km.Copy)
			assert.Equal(t, Chord{Key: "v", Mods: []string{tc.mod}}, km.Paste)
			assert.Empty(t, km.Enter.Mods)
			assert.Equal(t, "enter", km.Enter.Key)
		})
	}
}

func TestKeyboardSendsChords(t *testing.T) {
	d := &recordingDriver{}
	kb := NewWithKeymap(d, KeymapFor("darwin"))

	require.NoError(t, kb.Copy())
	require.NoError(t, kb.Paste())
	require.NoError(t, kb.PressEnter())

	assert.Equal(t, []tap{
		{key: "c", mods: []string{"cmd"}},
		{key: "v", mods: []string{"cmd"}},
		{key: "enter", mods: nil},
	}, d.taps)
}

func TestKeyboardWrapsDriverErrors(t *testing.T) {
	d := &recordingDriver{err: errors.New("sandboxed")}
	kb := NewWithKeymap(d, KeymapFor("linux"))

	err := kb.Paste()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSimulationFailed)
	assert.Contains(t, err.Error(), "ctrl+v")
}

func TestUnsupportedDriver(t *testing.T) {
	kb := New(Unsupported{Reason: "no cgo"})
	err := kb.Copy()
	assert.ErrorIs(t, err, ErrSimulationFailed)
	assert.Contains(t, err.Error(), "no cgo")
}

func TestChordString(t *testing.T) {
	assert.Equal(t, "ctrl+shift+c", Chord{Key: "c", Mods: []string{"ctrl", "shift"}}.String())
	assert.Equal(t, "enter", Chord{Key: "enter"}.String())
}
