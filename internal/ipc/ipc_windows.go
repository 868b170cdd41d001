//go:build windows

package ipc

import (
	"net"
	"os"
	"time"

	"github.com/Microsoft/go-winio"
)

const pipeName = `\\.\pipe\glean`

var getenv = os.Getenv

func socketPath() string { return pipeName }

func listenIPC(path string) (net.Listener, error) {
	return winio.ListenPipe(path, nil)
}

func dialIPC(path string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(path, &timeout)
}
