package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/glean/internal/clip"
	"go.klb.dev/glean/internal/input"
)

// fakeApp stands in for the focused application: a copy puts its selection
// on the clipboard, a paste records what was on the clipboard.
type fakeApp struct {
	clipboard *clip.Memory
	selected  string
	copyErr   error
	pasteErr  error

	copies int
	pasted []string
	enters int
}

func (f *fakeApp) Copy() error {
	f.copies++
	if f.copyErr != nil {
		return f.copyErr
	}
	if f.selected != "" {
		_ = f.clipboard.WriteText(f.selected)
	}
	return nil
}

func (f *fakeApp) Paste() error {
	if f.pasteErr != nil {
		return f.pasteErr
	}
	text, _ := f.clipboard.ReadText()
	f.pasted = append(f.pasted, text)
	return nil
}

func (f *fakeApp) PressEnter() error {
	f.enters++
	return nil
}

func newCapturer(initial, selected string) (*Capturer, *fakeApp, *clip.Memory) {
	mem := clip.NewMemory(initial)
	app := &fakeApp{clipboard: mem, selected: selected}
	return NewCapturer(clip.NewBridge(mem), app, 0), app, mem
}

func TestCaptureFromEmptyClipboard(t *testing.T) {
	c, app, mem := newCapturer("", "Hello world")

	got, err := c.Capture()
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
	assert.Equal(t, "", mem.Text())
	assert.Equal(t, 1, app.copies)
}

func TestCaptureNothingSelected(t *testing.T) {
	c, _, mem := newCapturer("same text", "")

	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, "same text", mem.Text())
}

func TestCaptureSameTextIsNoSelection(t *testing.T) {
	c, _, mem := newCapturer("same text", "  same text\n")

	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, "same text", mem.Text())
}

func TestCaptureWhitespaceSelectionIsNoSelection(t *testing.T) {
	c, _, mem := newCapturer("before", " \t\n")

	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, "before", mem.Text())
}

func TestCaptureRestoresClipboard(t *testing.T) {
	for _, initial := range []string{"", "x", "user clipboard\nwith lines", "  padded  "} {
		t.Run(initial, func(t *testing.T) {
			c, _, mem := newCapturer(initial, "selected")
			got, err := c.Capture()
			require.NoError(t, err)
			assert.Equal(t, "selected", got)
			assert.Equal(t, initial, mem.Text())
		})
	}
}

func TestCaptureCopyRejected(t *testing.T) {
	c, app, mem := newCapturer("mine", "ignored")
	app.copyErr = input.ErrSimulationFailed

	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, "mine", mem.Text())
}

func TestCaptureClipboardUnavailable(t *testing.T) {
	c, app, mem := newCapturer("mine", "selected")
	mem.SetErr(clip.ErrUnavailable)

	_, err := c.Capture()
	assert.ErrorIs(t, err, clip.ErrUnavailable)
	assert.Zero(t, app.copies, "must abort before touching the clipboard")

	mem.SetErr(nil)
	assert.Equal(t, "mine", mem.Text())
	assert.Zero(t, mem.Writes())
}

// failingRead fails every clipboard read after the first n.
type failingRead struct {
	*clip.Memory
	n     int
	reads int
}

func (f *failingRead) ReadText() (string, error) {
	f.reads++
	if f.reads > f.n {
		return "", clip.ErrUnavailable
	}
	return f.Memory.ReadText()
}

func TestCaptureSecondReadUnavailableRestores(t *testing.T) {
	mem := clip.NewMemory("mine")
	app := &fakeApp{clipboard: mem, selected: "selected"}
	c := NewCapturer(clip.NewBridge(&failingRead{Memory: mem, n: 1}), app, 0)

	_, err := c.Capture()
	require.ErrorIs(t, err, clip.ErrUnavailable)
	assert.Contains(t, err.Error(), "after copy")
	assert.Equal(t, 1, app.copies)
	assert.Equal(t, "mine", mem.Text(), "baseline must be written back")
	assert.Equal(t, 2, mem.Writes())
}

func TestCacheGet(t *testing.T) {
	var c Cache
	_, err := c.Get()
	assert.ErrorIs(t, err, ErrEmptyCache)

	c.Store("   ")
	_, err = c.Get()
	assert.ErrorIs(t, err, ErrEmptyCache)

	c.Store("  some text \n")
	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "some text", got)
}

func TestCopyContent(t *testing.T) {
	mem := clip.NewMemory("old")
	require.NoError(t, CopyContent(clip.NewBridge(mem), "new"))
	assert.Equal(t, "new", mem.Text())

	mem.SetErr(clip.ErrUnavailable)
	assert.ErrorIs(t, CopyContent(clip.NewBridge(mem), "x"), clip.ErrUnavailable)
}

func TestPlayerPastesAndRestores(t *testing.T) {
	mem := clip.NewMemory("user data")
	app := &fakeApp{clipboard: mem}
	p := NewPlayer(clip.NewBridge(mem), app, 0)

	require.NoError(t, p.Play("Hi"))
	require.NoError(t, p.Play(" there"))
	require.NoError(t, p.Play(""))

	assert.Equal(t, []string{"Hi", " there"}, app.pasted)
	assert.Equal(t, "user data", mem.Text())
}

func TestPlayerPasteRejectedStillRestores(t *testing.T) {
	mem := clip.NewMemory("user data")
	app := &fakeApp{clipboard: mem, pasteErr: errors.New("denied")}
	p := NewPlayer(clip.NewBridge(mem), app, 0)

	err := p.Play("text")
	require.Error(t, err)
	assert.Equal(t, "user data", mem.Text())
}
