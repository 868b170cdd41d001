// Package dispatch serves glean commands over a listener and offers a
// matching client. The daemon serves the local IPC socket in plaintext and,
// when configured, a TCP address with every message sealed by the shared
// token.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.klb.dev/glean/internal/app"
	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/message"
	"go.klb.dev/glean/internal/wire"
)

// Service is the set of operations a front-end can invoke.
type Service interface {
	GetSelectedContent() (string, error)
	GetSelectedContentFromCache() (string, error)
	SendAutoInputValue(text string) error
	RunAutoInput(text string) error
	TriggerSelectClick(p app.SelectPayload) error
	CopySelectContent(text string) error
	HideSelectWindow() error
	FocusChanged(id string, focused bool)
	Status() app.Status
}

// Server answers requests from any number of connections. A connection may
// carry many requests; each gets exactly one reply echoing its ID.
type Server struct {
	svc     Service
	version string
	// IdleTimeout closes connections that send nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration

	wg sync.WaitGroup
}

// NewServer returns a Server dispatching to svc.
func NewServer(svc Service, version string) *Server {
	return &Server{svc: svc, version: version}
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
// A non-nil key seals every message on these connections.
func (s *Server) Serve(ctx context.Context, ln net.Listener, key *crypto.Key) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, wire.New(conn, key))
		}()
	}
}

// Wait blocks until every connection handler has returned.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) serveConn(ctx context.Context, wc *wire.Conn) {
	defer wc.Close()
	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()
	log := slog.With("remote", wc.RemoteAddr())

	for {
		wc.SetReadDeadline(s.IdleTimeout)
		req, err := wc.ReadMsg()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
				log.Debug("connection closed", "err", err)
			}
			return
		}
		rep := s.Handle(req)
		if err := wc.WriteMsg(rep); err != nil {
			log.Debug("write reply failed", "type", rep.Type, "err", err)
			return
		}
	}
}

// Handle runs one request and returns its reply.
func (s *Server) Handle(req *message.Message) *message.Message {
	slog.Debug("request", "type", req.Type, "id", req.ID)

	var (
		text string
		err  error
	)
	switch req.Type {
	case message.TypeGetSelected:
		text, err = s.svc.GetSelectedContent()
	case message.TypeGetCached:
		text, err = s.svc.GetSelectedContentFromCache()
	case message.TypeAutoInput:
		err = s.svc.SendAutoInputValue(req.Text)
	case message.TypeRunAutoInput:
		err = s.svc.RunAutoInput(req.Text)
	case message.TypeSelectClick:
		if req.Select == nil {
			err = errors.New("select click: missing payload")
			break
		}
		err = s.svc.TriggerSelectClick(app.SelectPayload{
			Label:    req.Select.Label,
			Prompt:   req.Select.Prompt,
			Selected: req.Select.Selected,
		})
	case message.TypeCopy:
		err = s.svc.CopySelectContent(req.Text)
	case message.TypeHide:
		err = s.svc.HideSelectWindow()
	case message.TypeFocus:
		if req.Focus == nil {
			err = errors.New("focus: missing payload")
			break
		}
		s.svc.FocusChanged(req.Focus.Window, req.Focus.Focused)
	case message.TypeStatus:
		st := s.svc.Status()
		rep := req.Reply(message.TypeStatusResponse)
		rep.Status = &message.Status{
			Version:    s.version,
			Mode:       st.Mode,
			Clipboard:  st.Clipboard,
			Foreground: int64(st.Foreground),
			Popup:      st.Popup.String(),
			Streaming:  st.Streaming,
			HasCached:  st.HasCached,
		}
		return rep
	default:
		err = fmt.Errorf("unexpected message type %q", req.Type)
	}

	if err != nil {
		slog.Debug("request failed", "type", req.Type, "err", err)
		return req.ReplyErr(err)
	}
	rep := req.Reply(message.TypeResult)
	rep.Text = text
	return rep
}
