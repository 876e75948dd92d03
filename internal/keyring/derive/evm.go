package derive

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

type evmDeriver struct{}

// NewDeriver creates a Deriver producing EIP-55 checksummed EVM addresses.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewDeriver() Deriver {
	return evmDeriver{}
}

// Address derives the EVM address of the non-hardened child at index.
func (evmDeriver) Address(xpub *bip32.Key, index uint32) (common.Address, error) {
	if xpub == nil {
		return common.Address{}, ErrNotUnlocked
	}
	if xpub.IsPrivate {
		return common.Address{}, ErrPrivateKeyMaterial
	}
	if index >= bip32.FirstHardenedChild {
		return common.Address{}, errors.Wrapf(ErrHardenedIndex, "index %d", index)
	}

	child, err := xpub.NewChildKey(index)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to derive child key at index %d", index)
	}

	publicKey, err := crypto.DecompressPubkey(child.Key)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to decompress child public key")
	}

	return crypto.PubkeyToAddress(*publicKey), nil
}

// Path appends index to base without modifying base.
func (evmDeriver) Path(base accounts.DerivationPath, index uint32) accounts.DerivationPath {
	path := make(accounts.DerivationPath, len(base), len(base)+1)
	copy(path, base)

	return append(path, index)
}

// ParseExtendedKey decodes a base58 extended public key as exported by the device.
// Private extended keys are refused; the keyring never holds secret material.
func ParseExtendedKey(encoded string) (*bip32.Key, error) {
	key, err := bip32.B58Deserialize(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode extended public key")
	}
	if key.IsPrivate {
		return nil, ErrPrivateKeyMaterial
	}

	return key, nil
}

// ParseBasePath parses an absolute path such as m/44'/1'/0'/0. Relative paths are rejected
// since go-ethereum would silently prefix them with its own default root.
func ParseBasePath(path string) (accounts.DerivationPath, error) {
	if len(path) < 2 || path[:2] != "m/" {
		return nil, errors.Errorf("invalid base path %q: must start with m/", path)
	}

	parsed, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base path %q", path)
	}

	return parsed, nil
}
