package keyring

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/session"
	"github/chapool/go-hwkeyring/internal/metrics"
	"github/chapool/go-hwkeyring/internal/util"
)

// Type identifies this keyring to the host wallet.
const Type = "Link Hardware"

// UnlockStatus tells whether Unlock had to talk to the device.
type UnlockStatus string

const (
	AlreadyUnlocked UnlockStatus = "already unlocked"
	JustUnlocked    UnlockStatus = "just unlocked"
)

type Options struct {
	HDPath   string
	PerPage  int
	MaxIndex uint32
	// ChainID signs legacy transactions that do not carry one. Nil leaves them unprotected.
	ChainID *big.Int
}

// Account is one derived address. Balance is always nil here; filling it is up to the host.
type Account struct {
	Address common.Address `json:"address"`
	Index   uint32         `json:"index"`
	Balance *big.Int       `json:"balance"`
}

// Keyring manages the accounts of one external signing device. Private keys never reach it:
// addresses come from the device's extended public key, signatures from device requests.
type Keyring struct {
	// mu guards state; unlockMu serializes unlock attempts so the device is asked once.
	mu       sync.RWMutex
	unlockMu sync.Mutex
	state    *session.State

	client  *protocol.Client
	deriver derive.Deriver
	metrics *metrics.Service
	chainID *big.Int
}

func New(opts Options, client *protocol.Client, deriver derive.Deriver, m *metrics.Service) (*Keyring, error) {
	state, err := session.New(opts.HDPath, opts.PerPage, opts.MaxIndex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	if deriver == nil {
		deriver = derive.NewDeriver()
	}

	return &Keyring{
		state:   state,
		client:  client,
		deriver: deriver,
		metrics: m,
		chainID: opts.ChainID,
	}, nil
}

func (k *Keyring) Type() string {
	return Type
}

// ChainID is the fallback chain id for legacy transactions, nil when none is configured.
func (k *Keyring) ChainID() *big.Int {
	if k.chainID == nil {
		return nil
	}

	return new(big.Int).Set(k.chainID)
}

// Status is a point in time view of the session.
type Status struct {
	Type            string           `json:"type"`
	Unlocked        bool             `json:"unlocked"`
	HDPath          string           `json:"hdPath"`
	Page            int              `json:"page"`
	PerPage         int              `json:"perPage"`
	UnlockedAccount uint32           `json:"unlockedAccount"`
	Accounts        []common.Address `json:"accounts"`
	KnownIndices    int              `json:"knownIndices"`
}

func (k *Keyring) Status() Status {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return Status{
		Type:            Type,
		Unlocked:        k.state.Unlocked(),
		HDPath:          k.state.HDPath,
		Page:            k.state.Page,
		PerPage:         k.state.PerPage,
		UnlockedAccount: k.state.UnlockedAccount,
		Accounts:        k.state.ActiveAccounts(),
		KnownIndices:    k.state.Index.Len(),
	}
}

func (k *Keyring) IsUnlocked() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.state.Unlocked()
}

// Unlock fetches the extended public key for the base path unless it is already known.
// A fresh unlock delays the next device request by the configured cooldown.
func (k *Keyring) Unlock(ctx context.Context) (UnlockStatus, error) {
	k.unlockMu.Lock()
	defer k.unlockMu.Unlock()

	k.mu.RLock()
	unlocked, hdPath := k.state.Unlocked(), k.state.HDPath
	k.mu.RUnlock()

	if unlocked {
		return AlreadyUnlocked, nil
	}

	log := util.LogFromContext(ctx).With().Str("component", "keyring").Str("hd_path", hdPath).Logger()

	var reply protocol.PublicKeyReply
	if err := k.client.Do(ctx, protocol.GetEthereumPublicKey, protocol.GetPublicKeyParam{Path: hdPath}, &reply); err != nil {
		return "", errors.Wrap(err, "failed to unlock device")
	}

	xpub, err := derive.ParseExtendedKey(reply.XPub)
	if err != nil {
		log.Error().Err(err).Msg("Device returned an unusable extended public key")
		return "", err
	}

	k.mu.Lock()
	if k.state.HDPath != hdPath {
		k.mu.Unlock()
		return "", errors.Errorf("base path changed from %s to %s while unlocking", hdPath, k.state.HDPath)
	}
	k.state.XPub = xpub
	k.mu.Unlock()

	k.client.ArmCooldown()
	log.Info().Msg("Keyring unlocked")

	return JustUnlocked, nil
}

// DeriveAddress returns the address at index without contacting the device.
func (k *Keyring) DeriveAddress(index uint32) (common.Address, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.deriveAt(index)
}

// AddressIndex consults the index cache only.
func (k *Keyring) AddressIndex(addr common.Address) (uint32, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.state.Index.Lookup(addr)
}

// ResolveIndex finds the derivation index of addr, scanning when it is not cached.
// It never unlocks; a locked keyring fails with ErrNotUnlocked.
func (k *Keyring) ResolveIndex(addr common.Address) (uint32, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.resolve(addr)
}

func (k *Keyring) ForgetDevice() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.state.Forget()
}

// Serialize exports the session for the host to persist.
func (k *Keyring) Serialize() session.Snapshot {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.state.Snapshot()
}

// Deserialize replaces the session with snap. The keyring stays unlocked only if the base path is unchanged.
func (k *Keyring) Deserialize(snap session.Snapshot) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state.Restore(snap)
}

// deriveAt must be called with mu held.
func (k *Keyring) deriveAt(index uint32) (common.Address, error) {
	return k.deriver.Address(k.state.XPub, index)
}

// resolve must be called with mu held for writing.
func (k *Keyring) resolve(addr common.Address) (uint32, error) {
	if !k.state.Unlocked() {
		return 0, ErrNotUnlocked
	}

	return k.state.Index.Resolve(addr, k.deriveAt)
}
