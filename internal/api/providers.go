package api

import (
	"math/big"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/store"
	"github/chapool/go-hwkeyring/internal/metrics"
	"github/chapool/go-hwkeyring/internal/transport/wsbridge"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewBridge(cfg config.Server, m *metrics.Service) *wsbridge.Bridge {
	if len(cfg.Bridge.AllowedOrigins) == 0 {
		log.Warn().Msg("No allowed origins configured, the bridge accepts link pages from any origin")
	}

	return wsbridge.New(cfg.Bridge.AllowedOrigins, m)
}

// NewStore opens the snapshot store. An empty path keeps snapshots in memory only.
func NewStore(cfg config.Server) (*store.Store, error) {
	return store.Open(cfg.Store.Path)
}

// NewProtocolClient talks to the device through the link pages attached to the bridge.
func NewProtocolClient(cfg config.Server, bridge *wsbridge.Bridge, clock time2.Clock, m *metrics.Service) *protocol.Client {
	return protocol.NewClient(bridge, clock, m, protocol.Options{
		Origin:   cfg.Device.LinkOrigin,
		Cooldown: cfg.Device.UnlockCooldown,
		Timeout:  cfg.Device.RequestTimeout,
	})
}

func NewKeyring(cfg config.Server, client *protocol.Client, m *metrics.Service) (*keyring.Keyring, error) {
	var chainID *big.Int
	if cfg.Keyring.ChainID != 0 {
		chainID = big.NewInt(cfg.Keyring.ChainID)
	}

	return keyring.New(keyring.Options{
		HDPath:   cfg.Keyring.HDPath,
		PerPage:  cfg.Keyring.PerPage,
		MaxIndex: cfg.Keyring.MaxIndex,
		ChainID:  chainID,
	}, client, derive.NewDeriver(), m)
}
