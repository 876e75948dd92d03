package simulator

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

var errNoSeed = errors.New("device has no seed")

// keyAt derives the private extended key at path from the seed.
func keyAt(seed []byte, path string) (*bip32.Key, error) {
	if seed == nil {
		return nil, errNoSeed
	}

	indices, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid derivation path %q", path)
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key, nil
}

// signingKey returns the ECDSA key and address at path. Callers must not keep the key around.
func signingKey(seed []byte, path string) (*ecdsa.PrivateKey, common.Address, error) {
	key, err := keyAt(seed, path)
	if err != nil {
		return nil, common.Address{}, err
	}

	priv, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, common.Address{}, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return priv, crypto.PubkeyToAddress(priv.PublicKey), nil
}
