// Package wire reads and writes newline-delimited JSON messages over a
// net.Conn, with optional NaCl secretbox encryption.
//
// Wire format (unencrypted):
//
//	<json>\n
//
// Wire format (encrypted):
//
//	<base64(nonce+ciphertext)>\n
//
// The encrypted form is just a base64 blob on the wire so that the framing
// logic is identical in both cases: every line is a single message.
package wire

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/message"
)

const (
	// MaxMessageSize is the largest line we will read (16 MiB).
	MaxMessageSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// ErrTooLarge is returned when a peer sends a line over MaxMessageSize.
var ErrTooLarge = errors.New("message too large")

// Conn wraps a net.Conn with newline-delimited JSON framing and optional
// encryption.
type Conn struct {
	conn net.Conn
	sc   *bufio.Scanner
	key  *crypto.Key // nil = no encryption
}

// New wraps conn. If key is non-nil every message is sealed before being
// written and opened after being read.
func New(conn net.Conn, key *crypto.Key) *Conn {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	return &Conn{conn: conn, sc: sc, key: key}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// SetReadDeadline sets or, with 0, clears the read deadline.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
		return
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(d))
}

// WriteMsg serialises msg, optionally seals it, and writes it as one line.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	line := raw
	if c.key != nil {
		sealed, err := crypto.Seal(raw, c.key)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
		line = []byte(base64.StdEncoding.EncodeToString(sealed))
	}
	line = append(line, '\n')

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	_, err = c.conn.Write(line)
	return err
}

// ReadMsg reads one line, optionally opens it, and decodes it.
func (c *Conn) ReadMsg() (*message.Message, error) {
	if !c.sc.Scan() {
		err := c.sc.Err()
		switch {
		case err == nil:
			return nil, io.EOF
		case errors.Is(err, bufio.ErrTooLong):
			return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, MaxMessageSize)
		default:
			return nil, err
		}
	}
	line := c.sc.Bytes()

	raw := line
	if c.key != nil {
		sealed, err := base64.StdEncoding.DecodeString(string(line))
		if err != nil {
			return nil, fmt.Errorf("base64 decode: %w", err)
		}
		raw, err = crypto.Open(sealed, c.key)
		if err != nil {
			return nil, fmt.Errorf("decrypt: %w", err)
		}
	}
	return message.Decode(raw)
}

// Call writes req and waits for the matching reply. An ERROR reply is
// returned as an error.
func (c *Conn) Call(req *message.Message) (*message.Message, error) {
	if err := c.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Type, err)
	}
	rep, err := c.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply to %s: %w", req.Type, err)
	}
	if rep.ID != req.ID {
		return nil, fmt.Errorf("reply id %q does not match request %q", rep.ID, req.ID)
	}
	if err := rep.Err(); err != nil {
		return nil, err
	}
	return rep, nil
}
