package keyring

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// The operations below need the private key on the host and fail without contacting the device.

func (k *Keyring) SignTypedData(_ context.Context, _ common.Address, _ any) (string, error) {
	return "", errors.Wrap(ErrUnsupported, "sign typed data")
}

func (k *Keyring) ExportAccount(_ common.Address) (string, error) {
	return "", errors.Wrap(ErrUnsupported, "export account")
}

func (k *Keyring) DecryptMessage(_ common.Address, _ any) (string, error) {
	return "", errors.Wrap(ErrUnsupported, "decrypt message")
}

func (k *Keyring) GetEncryptionPublicKey(_ common.Address) (string, error) {
	return "", errors.Wrap(ErrUnsupported, "get encryption public key")
}

func (k *Keyring) GetAppKeyAddress(_ common.Address, origin string) (common.Address, error) {
	if origin == "" {
		return common.Address{}, errors.New("origin must be a non-empty string")
	}

	return common.Address{}, errors.Wrap(ErrUnsupported, "get app key address")
}
