// Package app wires glean's components into one context object. The daemon
// builds exactly one App at startup and hands it to every front-end; there
// is no package-level state.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/glean/internal/autoinput"
	"go.klb.dev/glean/internal/clip"
	"go.klb.dev/glean/internal/config"
	"go.klb.dev/glean/internal/foreground"
	"go.klb.dev/glean/internal/input"
	"go.klb.dev/glean/internal/logging"
	"go.klb.dev/glean/internal/selection"
	"go.klb.dev/glean/internal/window"
)

// SelectPayload is what the popup sends when one of its actions is clicked.
type SelectPayload struct {
	Label    string
	Prompt   string
	Selected string
}

// Status is a snapshot of the daemon state.
type Status struct {
	Mode       string
	Clipboard  string
	Foreground foreground.Handle
	Popup      window.State
	Streaming  bool
	HasCached  bool
}

// Options are the collaborators an App is built from.
type Options struct {
	Config     *config.Config
	Clipboard  *clip.Bridge
	Keys       input.Simulator
	Foreground *foreground.Tracker
	Windows    window.Manager
	// UI runs window-manager calls on the UI thread. nil runs them inline.
	UI window.Runner
	// Cursor returns the pointer position the popup opens at. Optional.
	Cursor func() (x, y int)
	// Activate raises a window by OS handle before playback. Optional.
	Activate func(foreground.Handle) error
}

// App implements every command the front-ends can send.
type App struct {
	cfg      *config.Config
	clip     *clip.Bridge
	keys     input.Simulator
	fg       *foreground.Tracker
	wm       window.Manager
	ui       window.Runner
	cursor   func() (x, y int)
	activate func(foreground.Handle) error

	capturer *selection.Capturer
	player   *selection.Player
	cache    selection.Cache
	stream   *autoinput.Streamer
	popup    *window.Guard
}

// New builds an App. Nothing is started until it is used.
func New(o Options) *App {
	cfg := o.Config
	if cfg == nil {
		cfg = &config.Config{Mode: config.DefaultMode, SettleDelay: selection.DefaultSettleDelay}
	}
	fg := o.Foreground
	if fg == nil {
		fg = foreground.NewTracker(nil)
	}
	popupID := cfg.PopupWindow
	if popupID == "" {
		popupID = "select"
	}

	a := &App{
		cfg:      cfg,
		clip:     o.Clipboard,
		keys:     o.Keys,
		fg:       fg,
		wm:       o.Windows,
		ui:       o.UI,
		cursor:   o.Cursor,
		activate: o.Activate,
		capturer: selection.NewCapturer(o.Clipboard, o.Keys, cfg.SettleDelay),
		player:   selection.NewPlayer(o.Clipboard, o.Keys, cfg.SettleDelay),
		popup:    window.NewGuard(popupID, o.Windows, o.UI),
	}
	a.stream = autoinput.New(autoinput.EmitterFunc(a.emit), cfg.SettleDelay)
	return a
}

// Close stops the auto-input worker once queued values have been typed.
func (a *App) Close() {
	a.stream.Close()
}

// Done is closed when the auto-input worker has stopped.
func (a *App) Done() <-chan struct{} { return a.stream.Done() }

// Popup returns the focus-guarded popup.
func (a *App) Popup() *window.Guard { return a.popup }

// Gesture handles a capture gesture: remember the focused window, capture
// the selection, cache it and open the popup at the pointer.
func (a *App) Gesture() error {
	a.fg.Capture()
	text, err := a.capturer.Capture()
	if err != nil {
		if errors.Is(err, selection.ErrNoSelection) {
			slog.Debug("gesture without selection")
		} else {
			slog.Warn("capture failed", "err", err)
		}
		return err
	}
	a.cache.Store(text)

	var x, y int
	if a.cursor != nil {
		x, y = a.cursor()
	}
	return a.popup.Show(x, y)
}

// GetSelectedContent captures the selection right now.
func (a *App) GetSelectedContent() (string, error) {
	text, err := a.capturer.Capture()
	if err != nil {
		return "", err
	}
	return text, nil
}

// GetSelectedContentFromCache returns the selection captured by the last
// gesture, trimmed.
func (a *App) GetSelectedContentFromCache() (string, error) {
	text, err := a.cache.Get()
	if err != nil {
		return "", err
	}
	logging.DebugText("cached selection", text)
	return text, nil
}

// SendAutoInputValue queues the full response text so far for typing.
func (a *App) SendAutoInputValue(text string) error {
	return a.stream.Send(text)
}

// RunAutoInput hides the popup so focus goes back to the target, then
// queues text.
func (a *App) RunAutoInput(text string) error {
	if err := a.popup.Hide(); err != nil {
		return err
	}
	return a.stream.Send(text)
}

// CopySelectContent puts text on the clipboard for the user.
func (a *App) CopySelectContent(text string) error {
	return selection.CopyContent(a.clip, text)
}

// HideSelectWindow hides the popup.
func (a *App) HideSelectWindow() error {
	return a.popup.Hide()
}

// FocusChanged routes a window-manager focus event.
func (a *App) FocusChanged(id string, focused bool) {
	if id == a.popup.ID() {
		a.popup.FocusChanged(focused)
	}
}

// TriggerSelectClick runs a popup action: it combines the action's prompt
// with the selection, brings the target window forward, pastes the
// combination there and presses Enter to send it.
func (a *App) TriggerSelectClick(p SelectPayload) error {
	slog.Info("select click", "label", p.Label, "mode", a.cfg.Mode)
	if err := a.popup.Hide(); err != nil {
		slog.Debug("hide popup before click", "err", err)
	}

	selected, err := a.clickSelection(p)
	if err != nil {
		return err
	}
	prompt := p.Prompt
	if prompt == "" {
		prompt = a.cfg.Template("")
	}
	combined := Combine(prompt, selected)

	if err := window.Raise(a.ui, a.wm, a.cfg.TargetWindow); err != nil {
		return fmt.Errorf("select click: %w", err)
	}
	time.Sleep(a.cfg.SettleDelay)
	// A rejected paste is logged by the keyboard and is not fatal; only
	// clipboard failures abort the click.
	if err := a.player.Play(combined); err != nil && !errors.Is(err, input.ErrSimulationFailed) {
		return fmt.Errorf("select click: %w", err)
	}
	_ = a.keys.PressEnter()
	return nil
}

// clickSelection prefers a fresh capture, then what the popup sent, then
// the cache.
func (a *App) clickSelection(p SelectPayload) (string, error) {
	text, err := a.capturer.Capture()
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, selection.ErrNoSelection) {
		return "", fmt.Errorf("select click: %w", err)
	}
	if s := strings.TrimSpace(p.Selected); s != "" {
		return s, nil
	}
	if s, err := a.cache.Get(); err == nil {
		return s, nil
	}
	return "", fmt.Errorf("select click: %w", selection.ErrNoSelection)
}

// Combine joins a prompt template and the selected text.
func Combine(prompt, selected string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return selected
	}
	return prompt + " " + selected
}

// Status returns a snapshot of the daemon state.
func (a *App) Status() Status {
	_, cacheErr := a.cache.Get()
	return Status{
		Mode:       a.cfg.Mode,
		Clipboard:  a.clip.Name(),
		Foreground: a.fg.Current(),
		Popup:      a.popup.State(),
		Streaming:  a.stream.Started(),
		HasCached:  cacheErr == nil,
	}
}

func (a *App) emit(text string) error {
	if h := a.fg.Current(); h != foreground.None && a.activate != nil {
		if err := a.activate(h); err != nil {
			slog.Warn("activate target window failed", "handle", int64(h), "err", err)
		}
	}
	return a.player.Play(text)
}
