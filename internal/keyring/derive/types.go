package derive

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

var (
	// ErrNotUnlocked is returned when an address is derived before the device exported its extended public key.
	ErrNotUnlocked = errors.New("keyring is locked: no extended public key")

	// ErrHardenedIndex is returned for indices that cannot be derived from a public key.
	ErrHardenedIndex = errors.New("hardened index cannot be derived from an extended public key")

	// ErrPrivateKeyMaterial is returned when an extended key handed to the deriver is private.
	ErrPrivateKeyMaterial = errors.New("extended key contains private key material")
)

// Deriver maps (extended public key, index) to a checksummed account address.
type Deriver interface {
	// Address derives the account address at base/index where base is the path the extended key was exported for.
	Address(xpub *bip32.Key, index uint32) (common.Address, error)

	// Path returns the full derivation path base/index.
	Path(base accounts.DerivationPath, index uint32) accounts.DerivationPath
}
