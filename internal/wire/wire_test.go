package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/message"
)

func pipe(t *testing.T, clientKey, serverKey *crypto.Key) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return New(a, clientKey), New(b, serverKey)
}

// echo answers one request on srv with a RESULT carrying the same text.
func echo(srv *Conn) {
	req, err := srv.ReadMsg()
	if err != nil {
		return
	}
	rep := req.Reply(message.TypeResult)
	rep.Text = req.Text
	_ = srv.WriteMsg(rep)
}

func TestCallPlain(t *testing.T) {
	cli, srv := pipe(t, nil, nil)
	go echo(srv)

	req := message.NewRequest(message.TypeAutoInput)
	req.Text = "multi\nline ✓"
	rep, err := cli.Call(req)
	require.NoError(t, err)
	assert.Equal(t, "multi\nline ✓", rep.Text)
}

func TestCallEncrypted(t *testing.T) {
	key, err := crypto.DeriveKey("secret")
	require.NoError(t, err)
	cli, srv := pipe(t, key, key)
	go echo(srv)

	req := message.NewRequest(message.TypeCopy)
	req.Text = "hello"
	rep, err := cli.Call(req)
	require.NoError(t, err)
	assert.Equal(t, "hello", rep.Text)
}

func TestWrongKeyFailsToDecrypt(t *testing.T) {
	k1, _ := crypto.DeriveKey("one")
	k2, _ := crypto.DeriveKey("two")
	cli, srv := pipe(t, k1, k2)

	go func() { _ = cli.WriteMsg(message.NewRequest(message.TypeStatus)) }()
	_, err := srv.ReadMsg()
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestCallReturnsDaemonError(t *testing.T) {
	cli, srv := pipe(t, nil, nil)
	go func() {
		req, err := srv.ReadMsg()
		if err != nil {
			return
		}
		_ = srv.WriteMsg(req.ReplyErr(assert.AnError))
	}()

	_, err := cli.Call(message.NewRequest(message.TypeGetCached))
	assert.EqualError(t, err, assert.AnError.Error())
}

func TestCallRejectsMismatchedID(t *testing.T) {
	cli, srv := pipe(t, nil, nil)
	go func() {
		if _, err := srv.ReadMsg(); err != nil {
			return
		}
		_ = srv.WriteMsg(&message.Message{Type: message.TypeResult, ID: "someone-else"})
	}()

	_, err := cli.Call(message.NewRequest(message.TypeStatus))
	assert.ErrorContains(t, err, "does not match")
}
