package txnorm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
)

// Kind tells which shape a caller handed in.
type Kind int

const (
	// KindImmutable is *types.Transaction: signing returns a new value.
	KindImmutable Kind = iota + 1
	// KindMutable is *MutableTx: signing sets the signature on the caller's value, unless it is frozen.
	KindMutable
)

func (k Kind) String() string {
	switch k {
	case KindImmutable:
		return "immutable"
	case KindMutable:
		return "mutable"
	default:
		return "unknown"
	}
}

type immutableShape interface {
	WithSignature(signer types.Signer, sig []byte) (*types.Transaction, error)
}

type mutableShape interface {
	SetSignature(v, r, s *big.Int) error
}

// Variant is a classified transaction. Nothing past Wrap looks at the caller's shape except Apply.
type Variant struct {
	kind      Kind
	immutable *types.Transaction
	mutable   *MutableTx
	canonical *Canonical
}

// Wrap classifies tx by what it can do. fallbackChainID is used for legacy transactions
// that carry no chain id; nil signs them without replay protection.
func Wrap(tx any, fallbackChainID *big.Int) (*Variant, error) {
	if tx == nil {
		return nil, errors.Wrap(ErrUnsupportedShape, "nil transaction")
	}

	switch tx.(type) {
	case immutableShape:
		typed, ok := tx.(*types.Transaction)
		if !ok || typed == nil {
			return nil, errors.Wrapf(ErrUnsupportedShape, "%T", tx)
		}

		canonical, err := fromTransaction(typed, fallbackChainID)
		if err != nil {
			return nil, err
		}

		return &Variant{kind: KindImmutable, immutable: typed, canonical: canonical}, nil

	case mutableShape:
		legacy, ok := tx.(*MutableTx)
		if !ok || legacy == nil {
			return nil, errors.Wrapf(ErrUnsupportedShape, "%T", tx)
		}

		return &Variant{kind: KindMutable, mutable: legacy, canonical: fromMutable(legacy, fallbackChainID)}, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "%T", tx)
	}
}

func (v *Variant) Kind() Kind {
	return v.kind
}

// WrapCanonical classifies a transaction received in the device encoding. A legacy payload keeps its own
// chainId; fallbackChainID only fills it in when absent and must agree with it otherwise.
func WrapCanonical(c *Canonical, fallbackChainID *big.Int) (*Variant, error) {
	if c == nil {
		return nil, errors.Wrap(ErrUnsupportedShape, "nil transaction")
	}

	tx, err := c.Transaction()
	if err != nil {
		return nil, err
	}

	chainID := fallbackChainID
	if c.TxType() == types.LegacyTxType {
		if own := c.ChainIDInt(); own != nil {
			if fallbackChainID != nil && fallbackChainID.Sign() != 0 && own.Cmp(fallbackChainID) != 0 {
				return nil, errors.Wrapf(ErrChainIDConflict, "transaction chain %s, configured %s", own, fallbackChainID)
			}
			chainID = own
		}
	}

	return Wrap(tx, chainID)
}

// Canonical returns the device payload. The returned value is shared; do not modify it.
func (v *Variant) Canonical() *Canonical {
	return v.canonical
}

// Apply verifies sig against expected and returns the signed transaction in the caller's shape.
// On any error the caller's value is left as it was.
func (v *Variant) Apply(sig protocol.SignatureReply, expected common.Address) (any, error) {
	if sig.Address != "" {
		if !common.IsHexAddress(sig.Address) || common.HexToAddress(sig.Address) != expected {
			return nil, errors.Wrapf(ErrSignerMismatch, "device reported %s, expected %s", sig.Address, expected.Hex())
		}
	}

	unsigned := v.immutable
	if unsigned == nil {
		var err error
		if unsigned, err = v.canonical.Transaction(); err != nil {
			return nil, err
		}
	}

	var eip155ChainID *big.Int
	if v.canonical.TxType() == types.LegacyTxType {
		eip155ChainID = v.canonical.ChainIDInt()
	}

	recID, err := recoveryID(sig.V.ToInt(), eip155ChainID)
	if err != nil {
		return nil, err
	}

	raw, err := signatureBytes(sig.R.ToInt(), sig.S.ToInt(), recID)
	if err != nil {
		return nil, err
	}

	signer := v.canonical.Signer()

	signed, err := unsigned.WithSignature(signer, raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	sender, err := types.Sender(signer, signed)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	if sender != expected {
		return nil, errors.Wrapf(ErrSignerMismatch, "recovered %s, expected %s", sender.Hex(), expected.Hex())
	}

	if v.kind == KindImmutable {
		return signed, nil
	}

	sv, sr, ss := signed.RawSignatureValues()

	if v.mutable.Frozen() {
		cpy := v.mutable.Copy()
		_ = cpy.SetSignature(sv, sr, ss)

		return cpy.Freeze(), nil
	}

	if err := v.mutable.SetSignature(sv, sr, ss); err != nil {
		return nil, err
	}

	return v.mutable, nil
}

// recoveryID maps the device's v to 0/1. 0/1 and 27/28 are always accepted; EIP-155 values
// only when chainID is given.
func recoveryID(v *big.Int, chainID *big.Int) (byte, error) {
	if v == nil {
		return 0, errors.Wrap(ErrInvalidSignature, "missing v")
	}

	if v.IsUint64() {
		switch v.Uint64() {
		case 0, 1:
			return byte(v.Uint64()), nil
		case 27, 28:
			return byte(v.Uint64() - 27), nil
		}
	}

	if chainID != nil {
		// v = recid + 35 + 2*chainID
		rec := new(big.Int).Sub(v, big.NewInt(35))
		rec.Sub(rec, new(big.Int).Mul(chainID, big.NewInt(2)))
		if rec.IsUint64() && rec.Uint64() <= 1 {
			return byte(rec.Uint64()), nil
		}
	}

	return 0, errors.Wrapf(ErrInvalidSignature, "unexpected v %s", v.String())
}

func signatureBytes(r, s *big.Int, recID byte) ([]byte, error) {
	if r == nil || s == nil || r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return nil, errors.Wrap(ErrInvalidSignature, "r or s out of range")
	}

	sig := make([]byte, 65)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[64] = recID

	return sig, nil
}
