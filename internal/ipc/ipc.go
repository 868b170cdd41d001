// Package ipc locates and opens the local socket the glean daemon serves
// its command protocol on. CLI sub-commands and the popup front-end dial
// it; nothing on it is encrypted because the OS restricts it to the owner.
//
//   - Linux:   $XDG_RUNTIME_DIR/glean.sock, else $TMPDIR/glean.sock
//   - macOS:   $TMPDIR/glean.sock
//   - Windows: \\.\pipe\glean (named pipe via go-winio)
//
// $GLEAN_SOCKET overrides the path on every platform.
package ipc

import (
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate path for the IPC socket.
func SocketPath() string {
	if s := getenv("GLEAN_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Listen creates a listener on the IPC socket, replacing a stale socket
// left behind by a crashed daemon.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to a running daemon.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath(), dialTimeout)
}

// IsRunning reports whether a daemon appears to be listening. It does a
// cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
