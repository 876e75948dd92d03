package wsbridge

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/metrics"
)

const writeTimeout = 10 * time.Second

var (
	// ErrNoLink is returned by Send when no link page connected before the context ended.
	ErrNoLink = errors.New("no device link page connected")

	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// Bridge is the transport between the keyring and device link pages connecting over websocket.
// Envelopes go to the most recently connected page; every message from any page is fanned out
// to subscribers tagged with the page's origin.
type Bridge struct {
	allowed  []string
	upgrader websocket.Upgrader
	metrics  *metrics.Service
	log      zerolog.Logger

	mu      sync.Mutex
	links   []*link
	changed chan struct{}
	subs    map[uint64]func(*protocol.Message)
	nextSub uint64
}

type link struct {
	conn    *websocket.Conn
	origin  string
	writeMu sync.Mutex
}

func (l *link) write(v any) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return l.conn.WriteJSON(v)
}

// New creates a bridge accepting link pages from allowedOrigins (prefix match). No origins accepts any.
func New(allowedOrigins []string, m *metrics.Service) *Bridge {
	b := &Bridge{
		allowed: allowedOrigins,
		metrics: m,
		log:     log.With().Str("component", "wsbridge").Logger(),
		changed: make(chan struct{}),
		subs:    make(map[uint64]func(*protocol.Message)),
	}
	b.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return b.OriginAllowed(r.Header.Get("Origin"))
		},
	}

	return b
}

func (b *Bridge) OriginAllowed(origin string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	if origin == "" {
		return false
	}

	for _, allowed := range b.allowed {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}

	return false
}

// Serve upgrades the request and pumps messages from the link page until it disconnects.
func (b *Bridge) Serve(w http.ResponseWriter, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if !b.OriginAllowed(origin) {
		return errors.Wrapf(ErrOriginNotAllowed, "%q", origin)
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		return nil //nolint:nilerr
	}

	l := &link{conn: conn, origin: origin}
	b.attach(l)
	defer b.detach(l)

	log := b.log.With().Str("origin", origin).Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("Link page connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("Link page connection ended")
			}
			log.Info().Msg("Link page disconnected")

			return nil
		}

		b.publish(&protocol.Message{Origin: origin, Data: data})
	}
}

// Send writes env to the newest link page, waiting for one to connect if necessary.
func (b *Bridge) Send(ctx context.Context, env *protocol.Envelope) error {
	for {
		b.mu.Lock()
		var current *link
		if n := len(b.links); n > 0 {
			current = b.links[n-1]
		}
		changed := b.changed
		b.mu.Unlock()

		if current != nil {
			if err := current.write(env); err != nil {
				return errors.Wrap(err, "failed to write envelope to link page")
			}

			return nil
		}

		b.log.Debug().Str("type", string(env.Type)).Msg("Waiting for a link page")

		select {
		case <-changed:
		case <-ctx.Done():
			return errors.Wrap(ErrNoLink, ctx.Err().Error())
		}
	}
}

func (b *Bridge) Subscribe(handler func(*protocol.Message)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	b.subs[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.subs, id)
	}
}

// Links returns the number of connected link pages.
func (b *Bridge) Links() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.links)
}

// WaitForLink blocks until at least one link page is connected.
func (b *Bridge) WaitForLink(ctx context.Context) error {
	for {
		b.mu.Lock()
		n, changed := len(b.links), b.changed
		b.mu.Unlock()

		if n > 0 {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return errors.Wrap(ErrNoLink, ctx.Err().Error())
		}
	}
}

// Close disconnects all link pages.
func (b *Bridge) Close() error {
	b.mu.Lock()
	links := append([]*link(nil), b.links...)
	b.mu.Unlock()

	for _, l := range links {
		l.writeMu.Lock()
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bridge shutting down"),
			time.Now().Add(time.Second))
		l.writeMu.Unlock()
		_ = l.conn.Close()
	}

	return nil
}

func (b *Bridge) publish(msg *protocol.Message) {
	b.mu.Lock()
	handlers := make([]func(*protocol.Message), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

func (b *Bridge) attach(l *link) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.links = append(b.links, l)
	b.notifyLocked()
}

func (b *Bridge) detach(l *link) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, other := range b.links {
		if other == l {
			b.links = append(b.links[:i], b.links[i+1:]...)
			break
		}
	}
	_ = l.conn.Close()
	b.notifyLocked()
}

func (b *Bridge) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
	b.metrics.LinkedPages(len(b.links))
}
