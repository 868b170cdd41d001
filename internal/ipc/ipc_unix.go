//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
	"time"
)

var getenv = os.Getenv

func socketPath() string {
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "glean.sock")
	}
	return filepath.Join(os.TempDir(), "glean.sock")
}

func listenIPC(path string) (net.Listener, error) {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, err
	}
	return ln, nil
}

func dialIPC(path string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", path, timeout)
}
