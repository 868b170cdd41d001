package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.design/x/hotkey/mainthread"

	"go.klb.dev/glean/internal/app"
	"go.klb.dev/glean/internal/clip/sysclip"
	"go.klb.dev/glean/internal/config"
	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/desktop"
	"go.klb.dev/glean/internal/dispatch"
	"go.klb.dev/glean/internal/foreground"
	"go.klb.dev/glean/internal/hotkey"
	"go.klb.dev/glean/internal/input"
	"go.klb.dev/glean/internal/ipc"
	"go.klb.dev/glean/internal/selection"
	"go.klb.dev/glean/internal/window"
)

const (
	idleTimeout  = 5 * time.Minute
	drainTimeout = 5 * time.Second
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the capture daemon",
		Long: `Starts the glean daemon. It owns the clipboard, the key simulator and
the popup, registers the capture hotkey and serves commands on the local
IPC socket (and on --listen over TCP, sealed with --token).

Precedence (lowest → highest): defaults → config file → GLEAN_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.String("mode", config.DefaultMode, "prompt mode used for popup actions without a prompt")
	f.Duration("settle-delay", selection.DefaultSettleDelay, "wait after synthesized keys before touching the clipboard")
	f.String("hotkey", "ctrl+shift+space", "capture gesture, e.g. ctrl+shift+space")
	f.Bool("no-hotkey", false, "do not register the capture hotkey")
	f.String("listen", "", "also serve commands on this TCP address (requires --token)")
	f.String("token", "", "shared secret sealing TCP messages")
	f.String("target-window", "main", "window raised by popup actions")
	f.String("popup-window", "select", "popup window id")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	keys := input.New(desktop.Keyboard())
	a := app.New(app.Options{
		Config:     cfg,
		Clipboard:  sysclip.Open(),
		Keys:       keys,
		Foreground: foreground.NewTracker(desktop.ForegroundWindow),
		Windows:    window.NewHeadless(),
		UI:         blocking(mainthread.Call),
		Cursor:     desktop.Cursor,
		Activate:   desktop.Activator(),
	})

	slog.Info("glean daemon starting",
		"version", Version,
		"mode", cfg.Mode,
		"settle_delay", cfg.SettleDelay,
		"copy", keys.Keymap().Copy,
		"paste", keys.Keymap().Paste,
		"listen", cfg.Listen,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !v.GetBool("no-hotkey") {
		hk := hotkey.NewService(hotkey.System())
		if err := hk.Start(ctx, cfg.Hotkey, func() { go gesture(a) }); err != nil {
			slog.Warn("capture hotkey unavailable", "hotkey", cfg.Hotkey, "err", err)
		} else {
			defer hk.Stop()
			watchHotkey(v, hk)
		}
	}

	srv := dispatch.NewServer(a, Version)
	srv.IdleTimeout = idleTimeout
	errc := make(chan error, 2)
	serving := 0

	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		serving++
		go func() { errc <- srv.Serve(ctx, ipcLn, nil) }()
	}

	if cfg.Listen != "" {
		key, err := crypto.DeriveKey(cfg.Token)
		if err != nil {
			return fmt.Errorf("key derivation: %w", err)
		}
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Listen, err)
		}
		slog.Info("listening", "addr", ln.Addr(), "encrypted", key != nil)
		serving++
		go func() { errc <- srv.Serve(ctx, ln, key) }()
	}

	if serving == 0 {
		return errors.New("no listener available")
	}

	select {
	case <-ctx.Done():
	case err = <-errc:
		stop()
	}
	slog.Info("glean daemon stopping")

	a.Close()
	select {
	case <-a.Done():
	case <-time.After(drainTimeout):
		slog.Warn("auto input still typing, giving up")
	}
	srv.Wait()
	return err
}

func gesture(a *app.App) {
	if err := a.Gesture(); err != nil && !errors.Is(err, selection.ErrNoSelection) {
		slog.Warn("capture gesture failed", "err", err)
	}
}

// watchHotkey re-registers the hotkey when the config file changes it.
func watchHotkey(v *viper.Viper, hk *hotkey.Service) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		combo := v.GetString("hotkey")
		if c, err := hotkey.Parse(combo); err == nil && c.String() == hk.Combo().String() {
			return
		}
		slog.Info("config changed", "file", e.Name, "hotkey", combo)
		if err := hk.Reregister(combo); err != nil {
			slog.Warn("hotkey change rejected", "hotkey", combo, "err", err)
		}
	})
	v.WatchConfig()
}

// blocking turns call into a window.Runner that returns only after fn has
// run. mainthread.Call returns early on macOS when invoked off the main
// thread, since the event loop owns it.
func blocking(call func(func())) window.Runner {
	return func(fn func()) {
		done := make(chan struct{})
		call(func() {
			defer close(done)
			fn()
		})
		<-done
	}
}
