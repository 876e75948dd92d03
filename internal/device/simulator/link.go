package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
)

// Link connects to a bridge as its link page and answers envelopes until ctx ends
// or the bridge closes the connection. origin is sent as the Origin header.
func (d *Device) Link(ctx context.Context, url string, origin string) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{"Origin": []string{origin}})
	if err != nil {
		return errors.Wrapf(err, "failed to dial bridge %s", url)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	d.log.Info().Str("url", url).Msg("Linked to bridge")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return errors.Wrap(err, "bridge connection lost")
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			d.log.Warn().Err(err).Msg("Ignoring malformed envelope")
			continue
		}

		reply := d.Handle(ctx, &env)
		if reply == nil {
			continue
		}

		if err := conn.WriteJSON(reply); err != nil {
			return errors.Wrap(err, "failed to write reply")
		}
	}
}
