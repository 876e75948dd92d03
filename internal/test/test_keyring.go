package test

import (
	"math/big"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/device/simulator"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/metrics"
	"github/chapool/go-hwkeyring/internal/transport/loopback"
)

// Mnemonic seeds every test device.
//
//nolint:dupword // Test mnemonic with repeated words
const Mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// KeyringOptions tunes NewTestKeyring. The zero value gives a keyring without cooldown or timeout
// talking to an honest simulated device.
type KeyringOptions struct {
	Device   []simulator.Option
	Cooldown time.Duration
	Timeout  time.Duration
	PerPage  int
	MaxIndex uint32
	ChainID  *big.Int
	Clock    time2.Clock
}

// Keyring bundles a keyring with the simulated device behind it.
type Keyring struct {
	*keyring.Keyring

	Device    *simulator.Device
	Transport *loopback.Transport
	Client    *protocol.Client
	Metrics   *metrics.Service
}

func WithTestKeyring(t *testing.T, closure func(k *Keyring)) {
	t.Helper()

	closure(NewTestKeyring(t, KeyringOptions{}))
}

func NewTestKeyring(t *testing.T, opts KeyringOptions) *Keyring {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()

	m, err := metrics.New(cfg)
	require.NoError(t, err)

	dev := simulator.New(Mnemonic, "", opts.Device...)
	t.Cleanup(dev.Close)

	tr := loopback.New(cfg.Device.LinkOrigin, dev)
	client := protocol.NewClient(tr, opts.Clock, m, protocol.Options{
		Origin:   cfg.Device.LinkOrigin,
		Cooldown: opts.Cooldown,
		Timeout:  opts.Timeout,
	})

	k, err := keyring.New(keyring.Options{
		HDPath:   cfg.Keyring.HDPath,
		PerPage:  opts.PerPage,
		MaxIndex: opts.MaxIndex,
		ChainID:  opts.ChainID,
	}, client, derive.NewDeriver(), m)
	require.NoError(t, err)

	return &Keyring{Keyring: k, Device: dev, Transport: tr, Client: client, Metrics: m}
}

// AccountAt returns the address the test device holds at index below the default base path.
func AccountAt(t *testing.T, dev *simulator.Device, index uint32) common.Address {
	t.Helper()

	base, err := derive.ParseBasePath(config.DefaultHDPath)
	require.NoError(t, err)

	addr, err := dev.Address(derive.NewDeriver().Path(base, index).String())
	require.NoError(t, err)

	return addr
}
