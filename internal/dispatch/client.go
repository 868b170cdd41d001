package dispatch

import (
	"net"

	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/message"
	"go.klb.dev/glean/internal/wire"
)

// Client sends commands to a daemon over one connection. It is not safe
// for concurrent use.
type Client struct {
	wc *wire.Conn
}

// NewClient wraps conn. key must match the server's, or be nil for the
// IPC socket.
func NewClient(conn net.Conn, key *crypto.Key) *Client {
	return &Client{wc: wire.New(conn, key)}
}

// Close closes the connection.
func (c *Client) Close() error { return c.wc.Close() }

func (c *Client) text(t message.Type, text string) (string, error) {
	req := message.NewRequest(t)
	req.Text = text
	rep, err := c.wc.Call(req)
	if err != nil {
		return "", err
	}
	return rep.Text, nil
}

// GetSelected captures the current selection.
func (c *Client) GetSelected() (string, error) {
	return c.text(message.TypeGetSelected, "")
}

// GetCached returns the selection cached by the last gesture.
func (c *Client) GetCached() (string, error) {
	return c.text(message.TypeGetCached, "")
}

// AutoInput queues the full response text so far.
func (c *Client) AutoInput(text string) error {
	_, err := c.text(message.TypeAutoInput, text)
	return err
}

// RunAutoInput hides the popup and queues text.
func (c *Client) RunAutoInput(text string) error {
	_, err := c.text(message.TypeRunAutoInput, text)
	return err
}

// SelectClick runs a popup action.
func (c *Client) SelectClick(s message.Select) error {
	req := message.NewRequest(message.TypeSelectClick)
	req.Select = &s
	_, err := c.wc.Call(req)
	return err
}

// Copy puts text on the daemon's clipboard.
func (c *Client) Copy(text string) error {
	_, err := c.text(message.TypeCopy, text)
	return err
}

// Hide hides the popup.
func (c *Client) Hide() error {
	_, err := c.text(message.TypeHide, "")
	return err
}

// Focus reports that window gained or lost focus.
func (c *Client) Focus(window string, focused bool) error {
	req := message.NewRequest(message.TypeFocus)
	req.Focus = &message.Focus{Window: window, Focused: focused}
	_, err := c.wc.Call(req)
	return err
}

// Status asks for a status snapshot.
func (c *Client) Status() (*message.Status, error) {
	rep, err := c.wc.Call(message.NewRequest(message.TypeStatus))
	if err != nil {
		return nil, err
	}
	if rep.Status == nil {
		return &message.Status{}, nil
	}
	return rep.Status, nil
}
