package txnorm

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// MutableTx is the legacy transaction shape whose signature is set in place. A frozen
// instance refuses modification; signing it yields a new frozen instance instead.
type MutableTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address
	Value    *big.Int
	Data     []byte
	ChainID  *big.Int

	V, R, S *big.Int

	frozen bool
}

// SetSignature stores raw signature values.
func (tx *MutableTx) SetSignature(v, r, s *big.Int) error {
	if tx.frozen {
		return ErrFrozen
	}

	tx.V, tx.R, tx.S = copyBig(v), copyBig(r), copyBig(s)

	return nil
}

func (tx *MutableTx) Freeze() *MutableTx {
	tx.frozen = true
	return tx
}

func (tx *MutableTx) Frozen() bool {
	return tx.frozen
}

// Signed reports whether signature values are present.
func (tx *MutableTx) Signed() bool {
	return tx.V != nil && tx.R != nil && tx.S != nil
}

// Copy returns an unfrozen deep copy.
func (tx *MutableTx) Copy() *MutableTx {
	cpy := &MutableTx{
		Nonce:    tx.Nonce,
		GasPrice: copyBig(tx.GasPrice),
		Gas:      tx.Gas,
		Value:    copyBig(tx.Value),
		Data:     slices.Clone(tx.Data),
		ChainID:  copyBig(tx.ChainID),
		V:        copyBig(tx.V),
		R:        copyBig(tx.R),
		S:        copyBig(tx.S),
	}
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}

	return cpy
}

func copyBig(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}

	return new(big.Int).Set(x)
}
