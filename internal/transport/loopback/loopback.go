package loopback

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
)

// Handler answers an envelope in-process. A nil reply means no answer.
type Handler interface {
	Handle(ctx context.Context, env *protocol.Envelope) *protocol.Reply
}

// Transport connects a keyring to an in-process handler, e.g. the device simulator.
// Replies are published with the configured origin.
type Transport struct {
	origin  string
	handler Handler

	mu     sync.Mutex
	subs   map[uint64]func(*protocol.Message)
	nextID uint64
}

func New(origin string, handler Handler) *Transport {
	return &Transport{
		origin:  origin,
		handler: handler,
		subs:    make(map[uint64]func(*protocol.Message)),
	}
}

func (t *Transport) Send(ctx context.Context, env *protocol.Envelope) error {
	if t.handler == nil {
		return errors.New("no device attached")
	}

	reply := t.handler.Handle(ctx, env)
	if reply == nil {
		return nil
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return errors.Wrap(err, "failed to encode reply")
	}

	t.Publish(t.origin, data)

	return nil
}

func (t *Transport) Subscribe(handler func(*protocol.Message)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs[id] = handler

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		delete(t.subs, id)
	}
}

// Publish delivers a message to all current subscribers.
func (t *Transport) Publish(origin string, data []byte) {
	t.mu.Lock()
	handlers := make([]func(*protocol.Message), 0, len(t.subs))
	for _, h := range t.subs {
		handlers = append(handlers, h)
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(&protocol.Message{Origin: origin, Data: data})
	}
}

func (t *Transport) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.subs)
}
