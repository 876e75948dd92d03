package wsbridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/transport/wsbridge"
)

const origin = "http://localhost:4200"

func newServer(t *testing.T, b *wsbridge.Bridge) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := b.Serve(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, from string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{from}})
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestOriginAllowed(t *testing.T) {
	b := wsbridge.New([]string{origin}, nil)

	assert.True(t, b.OriginAllowed(origin))
	assert.True(t, b.OriginAllowed(origin+"/link"))
	assert.False(t, b.OriginAllowed("http://evil.example"))
	assert.False(t, b.OriginAllowed(""))

	assert.True(t, wsbridge.New(nil, nil).OriginAllowed("http://anything"))
}

func TestRejectsForeignOrigin(t *testing.T) {
	b := wsbridge.New([]string{origin}, nil)
	url := newServer(t, b)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSendAndReceive(t *testing.T) {
	b := wsbridge.New([]string{origin}, nil)
	url := newServer(t, b)

	conn := dial(t, url, origin)
	require.NoError(t, b.WaitForLink(t.Context()))
	assert.Equal(t, 1, b.Links())

	got := make(chan *protocol.Message, 1)
	unsubscribe := b.Subscribe(func(m *protocol.Message) { got <- m })
	defer unsubscribe()

	env := &protocol.Envelope{ID: "abc", Type: protocol.GetEthereumPublicKey, Param: json.RawMessage(`{"path":"m/44'/1'/0'/0"}`)}
	require.NoError(t, b.Send(t.Context(), env))

	var received protocol.Envelope
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, *env, received)

	require.NoError(t, conn.WriteJSON(protocol.Reply{ID: "abc", Payload: json.RawMessage(`{"xpub":"x"}`)}))

	select {
	case m := <-got:
		assert.Equal(t, origin, m.Origin)
		reply, err := protocol.DecodeReply(m.Data)
		require.NoError(t, err)
		assert.Equal(t, "abc", reply.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("reply not published")
	}
}

func TestSendWaitsForLink(t *testing.T) {
	b := wsbridge.New([]string{origin}, nil)
	url := newServer(t, b)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := b.Send(ctx, &protocol.Envelope{ID: "1"})
	require.ErrorIs(t, err, wsbridge.ErrNoLink)

	sent := make(chan error, 1)
	go func() {
		sent <- b.Send(t.Context(), &protocol.Envelope{ID: "2", Type: protocol.SignMessage})
	}()

	conn := dial(t, url, origin)

	var received protocol.Envelope
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, "2", received.ID)
	require.NoError(t, <-sent)
}

func TestLinkDisconnect(t *testing.T) {
	b := wsbridge.New([]string{origin}, nil)
	url := newServer(t, b)

	conn := dial(t, url, origin)
	require.NoError(t, b.WaitForLink(t.Context()))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return b.Links() == 0 }, 5*time.Second, 10*time.Millisecond)
}
