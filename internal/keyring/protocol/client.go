package protocol

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/metrics"
	"github/chapool/go-hwkeyring/internal/util"
)

type Options struct {
	// Origin prefix replies must come from. Empty accepts any origin.
	Origin string
	// Cooldown after a fresh unlock before the next request may reach the device.
	Cooldown time.Duration
	// Timeout bounds each request; zero waits as long as the caller's context allows.
	Timeout time.Duration
}

// Client issues one request at a time to the device and correlates exactly one reply to it.
type Client struct {
	transport Transport
	metrics   *metrics.Service
	opts      Options
	comms     chan struct{}
	cooldown  *cooldown
}

func NewClient(transport Transport, clock time2.Clock, m *metrics.Service, opts Options) *Client {
	if clock == nil {
		clock = time2.DefaultClock
	}

	return &Client{
		transport: transport,
		metrics:   m,
		opts:      opts,
		comms:     make(chan struct{}, 1),
		cooldown:  &cooldown{clock: clock, interval: opts.Cooldown},
	}
}

// ArmCooldown makes the next request wait for the cooldown interval. Call it after a fresh unlock only.
func (c *Client) ArmCooldown() {
	c.cooldown.arm()
}

func (c *Client) CoolingDown() bool {
	return c.cooldown.coolingDown()
}

// Do sends cmd with param and decodes the reply payload into out (which may be nil).
// Requests are serialized; a reply arriving after Do returned is dropped.
func (c *Client) Do(ctx context.Context, cmd CommandType, param any, out any) error {
	select {
	case c.comms <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.comms }()

	if err := c.cooldown.wait(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(param)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s param", cmd)
	}

	env := &Envelope{ID: uuid.NewString(), Type: cmd, Param: raw}

	log := util.LogFromContext(ctx).With().
		Str("component", "device_protocol").
		Str("type", string(cmd)).
		Str("id", env.ID).
		Logger()

	reqCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	replies := make(chan *Reply, 1)
	var once sync.Once

	unsubscribe := c.transport.Subscribe(func(msg *Message) {
		if c.opts.Origin != "" && !strings.HasPrefix(msg.Origin, c.opts.Origin) {
			return
		}

		reply, err := DecodeReply(msg.Data)
		if err != nil {
			log.Debug().Err(err).Str("origin", msg.Origin).Msg("Ignoring undecodable message")
			return
		}
		if reply.ID != "" && reply.ID != env.ID {
			return
		}

		once.Do(func() { replies <- reply })
	})
	defer unsubscribe()

	started := time.Now()
	log.Debug().Msg("Sending device request")

	if err := c.transport.Send(reqCtx, env); err != nil {
		c.metrics.ObserveRequest(string(cmd), metrics.ResultSendError, time.Since(started))
		log.Error().Err(err).Msg("Failed to send device request")

		return &TransportError{Message: err.Error(), Err: err}
	}

	var reply *Reply
	select {
	case reply = <-replies:
	case <-reqCtx.Done():
		if ctx.Err() != nil {
			c.metrics.ObserveRequest(string(cmd), metrics.ResultCanceled, time.Since(started))
			return ctx.Err()
		}

		c.metrics.ObserveRequest(string(cmd), metrics.ResultTimeout, time.Since(started))
		log.Error().Dur("timeout", c.opts.Timeout).Msg("Device request timed out")

		return errors.Wrapf(ErrRequestTimeout, "%s after %s", cmd, c.opts.Timeout)
	}

	if reply.Error != "" {
		c.metrics.ObserveRequest(string(cmd), metrics.ResultDeviceError, time.Since(started))
		log.Error().Str("device_error", reply.Error).Msg("Device reported an error")

		return &TransportError{Message: reply.Error}
	}

	c.metrics.ObserveRequest(string(cmd), metrics.ResultOK, time.Since(started))
	log.Debug().Msg("Received device reply")

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(reply.Payload, out); err != nil {
		return errors.Wrapf(ErrInvalidReply, "%s: %v", cmd, err)
	}

	return nil
}
