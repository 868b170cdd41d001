// Package message defines the glean command protocol spoken between the
// daemon and its front-ends (the popup UI, the CLI, a generation service).
//
// All messages are newline-delimited JSON. A connection carries any number
// of requests, each answered by one reply echoing the request ID.
package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests
	TypeGetSelected  Type = "GET_SELECTED"
	TypeGetCached    Type = "GET_CACHED"
	TypeAutoInput    Type = "AUTO_INPUT"
	TypeRunAutoInput Type = "RUN_AUTO_INPUT"
	TypeSelectClick  Type = "SELECT_CLICK"
	TypeCopy         Type = "COPY"
	TypeHide         Type = "HIDE"
	TypeFocus        Type = "FOCUS"
	TypeStatus       Type = "STATUS"

	// Replies
	TypeResult         Type = "RESULT"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeError          Type = "ERROR"
)

// Select is the payload of a SELECT_CLICK request.
type Select struct {
	Label    string `json:"label"`
	Prompt   string `json:"prompt"`
	Selected string `json:"selected"`
}

// Focus is the payload of a FOCUS event sent by the window toolkit.
type Focus struct {
	Window  string `json:"window"`
	Focused bool   `json:"focused"`
}

// Status describes a running daemon.
type Status struct {
	Version    string `json:"version"`
	Mode       string `json:"mode"`
	Clipboard  string `json:"clipboard"`
	Foreground int64  `json:"foreground"`
	Popup      string `json:"popup"`
	Streaming  bool   `json:"streaming"`
	HasCached  bool   `json:"has_cached"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type   `json:"type"`
	ID   string `json:"id,omitempty"`

	// GET_SELECTED / GET_CACHED replies, AUTO_INPUT, RUN_AUTO_INPUT, COPY
	Text string `json:"text,omitempty"`

	// SELECT_CLICK
	Select *Select `json:"select,omitempty"`

	// FOCUS
	Focus *Focus `json:"focus,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// NewRequest returns a request of type t with a fresh ID.
func NewRequest(t Type) *Message {
	return &Message{Type: t, ID: uuid.NewString()}
}

// Reply returns an empty reply of type t to m.
func (m *Message) Reply(t Type) *Message {
	return &Message{Type: t, ID: m.ID}
}

// ReplyErr returns an ERROR reply to m carrying err.
func (m *Message) ReplyErr(err error) *Message {
	r := m.Reply(TypeError)
	r.Error = err.Error()
	return r
}

// Err returns the error carried by an ERROR message, or nil.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	if m.Error == "" {
		return errors.New("unknown daemon error")
	}
	return errors.New(m.Error)
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, errors.New("message decode: missing type")
	}
	return &m, nil
}
