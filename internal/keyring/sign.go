package keyring

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
	"github/chapool/go-hwkeyring/internal/util"
)

// SignTransaction has the device sign tx for addr. tx is a *types.Transaction or a *txnorm.MutableTx;
// the result has the same shape. Nothing is returned unless the signature recovers to addr.
func (k *Keyring) SignTransaction(ctx context.Context, addr common.Address, tx any) (any, error) {
	variant, err := txnorm.Wrap(tx, k.chainID)
	if err != nil {
		return nil, err
	}

	return k.signVariant(ctx, addr, variant)
}

// SignCanonical signs a transaction given in the device encoding, as the HTTP API and the CLI receive it.
// A legacy payload with a chainId is signed replay protected for that chain.
func (k *Keyring) SignCanonical(ctx context.Context, addr common.Address, c *txnorm.Canonical) (*types.Transaction, error) {
	variant, err := txnorm.WrapCanonical(c, k.chainID)
	if err != nil {
		return nil, err
	}

	result, err := k.signVariant(ctx, addr, variant)
	if err != nil {
		return nil, err
	}

	signed, ok := result.(*types.Transaction)
	if !ok {
		return nil, errors.Errorf("unexpected signed transaction type %T", result)
	}

	return signed, nil
}

func (k *Keyring) signVariant(ctx context.Context, addr common.Address, variant *txnorm.Variant) (any, error) {
	path, err := k.pathFor(ctx, addr)
	if err != nil {
		return nil, err
	}

	var reply protocol.SignatureReply
	param := protocol.SignTransactionParam{Path: path, Transaction: variant.Canonical()}
	if err := k.client.Do(ctx, protocol.SignTransaction, param, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	signed, err := variant.Apply(reply, addr)
	if err != nil {
		k.signatureRejected(ctx, "transaction", addr, err)
		return nil, err
	}

	return signed, nil
}

// SignMessage signs a 32 byte hash (eth_sign) given as hex. Returns the 0x-hex r||s||v signature.
func (k *Keyring) SignMessage(ctx context.Context, addr common.Address, data string) (string, error) {
	raw, err := decodeHex(data)
	if err != nil {
		return "", err
	}

	return k.signMessage(ctx, addr, raw, false)
}

// SignPersonalMessage signs msg with the Ethereum signed message prefix. A 0x-prefixed hex string is
// signed as the bytes it encodes, anything else as UTF-8 text.
func (k *Keyring) SignPersonalMessage(ctx context.Context, addr common.Address, msg string) (string, error) {
	raw, err := personalMessageBytes(msg)
	if err != nil {
		return "", err
	}

	return k.signMessage(ctx, addr, raw, true)
}

func (k *Keyring) signMessage(ctx context.Context, addr common.Address, data []byte, personal bool) (string, error) {
	digest, err := txnorm.MessageDigest(data, personal)
	if err != nil {
		return "", err
	}

	path, err := k.pathFor(ctx, addr)
	if err != nil {
		return "", err
	}

	var reply protocol.SignatureReply
	param := protocol.SignMessageParam{Path: path, Message: data, Personal: personal}
	if err := k.client.Do(ctx, protocol.SignMessage, param, &reply); err != nil {
		return "", errors.Wrap(err, "failed to sign message")
	}

	sig, err := txnorm.VerifyMessage(digest, reply, addr)
	if err != nil {
		k.signatureRejected(ctx, "message", addr, err)
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// pathFor unlocks if needed and returns the full derivation path of addr.
func (k *Keyring) pathFor(ctx context.Context, addr common.Address) (string, error) {
	if _, err := k.Unlock(ctx); err != nil {
		return "", err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	idx, err := k.resolve(addr)
	if err != nil {
		return "", err
	}

	return k.deriver.Path(k.state.BasePath, idx).String(), nil
}

func (k *Keyring) signatureRejected(ctx context.Context, kind string, addr common.Address, err error) {
	if !errors.Is(err, ErrSignerMismatch) {
		return
	}

	k.metrics.SignerMismatch(kind)
	util.LogFromContext(ctx).Warn().
		Err(err).
		Str("component", "keyring").
		Str("kind", kind).
		Str("address", addr.Hex()).
		Msg("Discarding device signature")
}

func personalMessageBytes(msg string) ([]byte, error) {
	if !isPrefixedHex(msg) {
		return []byte(msg), nil
	}

	data, err := hexutil.Decode(msg)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMessage, "not hex: %v", err)
	}

	return data, nil
}

func isPrefixedHex(s string) bool {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}

	for _, c := range s[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}

	return true
}

// decodeHex accepts hex with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMessage, "not hex: %v", err)
	}

	return data, nil
}
