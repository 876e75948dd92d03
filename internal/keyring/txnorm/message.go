package txnorm

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
)

// MessageDigest returns the hash the device signs. Personal messages get the
// "\x19Ethereum Signed Message:\n" prefix; raw eth_sign data must already be a 32 byte hash.
func MessageDigest(data []byte, personal bool) ([]byte, error) {
	if personal {
		return accounts.TextHash(data), nil
	}

	if len(data) != common.HashLength {
		return nil, errors.Wrapf(ErrInvalidMessage, "eth_sign expects a %d byte hash, got %d bytes", common.HashLength, len(data))
	}

	return common.CopyBytes(data), nil
}

// VerifyMessage checks that both the address the device reported and the one recovered from the
// signature are expected, and returns the signature as r || s || v with v in {27, 28}.
func VerifyMessage(digest []byte, sig protocol.SignatureReply, expected common.Address) ([]byte, error) {
	if !common.IsHexAddress(sig.Address) || common.HexToAddress(sig.Address) != expected {
		return nil, errors.Wrapf(ErrSignerMismatch, "device reported %q, expected %s", sig.Address, expected.Hex())
	}

	recID, err := recoveryID(sig.V.ToInt(), nil)
	if err != nil {
		return nil, err
	}

	raw, err := signatureBytes(sig.R.ToInt(), sig.S.ToInt(), recID)
	if err != nil {
		return nil, err
	}

	pub, err := crypto.SigToPub(digest, raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	if recovered := crypto.PubkeyToAddress(*pub); recovered != expected {
		return nil, errors.Wrapf(ErrSignerMismatch, "recovered %s, expected %s", recovered.Hex(), expected.Hex())
	}

	raw[crypto.RecoveryIDOffset] += 27

	return raw, nil
}
