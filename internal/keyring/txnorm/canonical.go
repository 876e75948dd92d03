package txnorm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Canonical is the single transaction encoding the device accepts. Every number is 0x-hex.
type Canonical struct {
	Type                 *hexutil.Uint64  `json:"type,omitempty"`
	ChainID              *hexutil.Big     `json:"chainId,omitempty"`
	Nonce                hexutil.Uint64   `json:"nonce"`
	To                   *common.Address  `json:"to"`
	Value                *hexutil.Big     `json:"value"`
	GasPrice             *hexutil.Big     `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big     `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big     `json:"maxPriorityFeePerGas,omitempty"`
	GasLimit             hexutil.Uint64   `json:"gasLimit"`
	Data                 hexutil.Bytes    `json:"data"`
	AccessList           types.AccessList `json:"accessList,omitempty"`
}

// TxType returns the EIP-2718 type, legacy when absent.
func (c *Canonical) TxType() uint8 {
	if c.Type == nil {
		return types.LegacyTxType
	}

	return uint8(*c.Type) //nolint:gosec // validated by Transaction
}

// ChainIDInt returns the chain id, nil when the transaction is not replay protected.
func (c *Canonical) ChainIDInt() *big.Int {
	if c.ChainID == nil || c.ChainID.ToInt().Sign() == 0 {
		return nil
	}

	return new(big.Int).Set(c.ChainID.ToInt())
}

// Signer returns the signer matching the transaction's chain id.
func (c *Canonical) Signer() types.Signer {
	return types.LatestSignerForChainID(c.ChainIDInt())
}

// Transaction rebuilds the unsigned transaction.
func (c *Canonical) Transaction() (*types.Transaction, error) {
	if c.Type != nil && *c.Type > 0xff {
		return nil, errors.Wrapf(ErrUnsupportedShape, "transaction type %d", uint64(*c.Type))
	}

	value := bigOrZero(c.Value.ToInt())
	data := []byte(c.Data)

	switch c.TxType() {
	case types.LegacyTxType:
		return types.NewTx(&types.LegacyTx{
			Nonce:    uint64(c.Nonce),
			GasPrice: bigOrZero(c.GasPrice.ToInt()),
			Gas:      uint64(c.GasLimit),
			To:       c.To,
			Value:    value,
			Data:     data,
		}), nil

	case types.AccessListTxType:
		if c.ChainIDInt() == nil {
			return nil, errors.Wrap(ErrUnsupportedShape, "access list transaction without chain id")
		}

		return types.NewTx(&types.AccessListTx{
			ChainID:    c.ChainIDInt(),
			Nonce:      uint64(c.Nonce),
			GasPrice:   bigOrZero(c.GasPrice.ToInt()),
			Gas:        uint64(c.GasLimit),
			To:         c.To,
			Value:      value,
			Data:       data,
			AccessList: c.AccessList,
		}), nil

	case types.DynamicFeeTxType:
		if c.ChainIDInt() == nil {
			return nil, errors.Wrap(ErrUnsupportedShape, "dynamic fee transaction without chain id")
		}

		return types.NewTx(&types.DynamicFeeTx{
			ChainID:    c.ChainIDInt(),
			Nonce:      uint64(c.Nonce),
			GasTipCap:  bigOrZero(c.MaxPriorityFeePerGas.ToInt()),
			GasFeeCap:  bigOrZero(c.MaxFeePerGas.ToInt()),
			Gas:        uint64(c.GasLimit),
			To:         c.To,
			Value:      value,
			Data:       data,
			AccessList: c.AccessList,
		}), nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "transaction type %d", c.TxType())
	}
}

func fromTransaction(tx *types.Transaction, fallbackChainID *big.Int) (*Canonical, error) {
	c := &Canonical{
		Nonce:    hexutil.Uint64(tx.Nonce()),
		To:       tx.To(),
		Value:    (*hexutil.Big)(bigOrZero(tx.Value())),
		GasLimit: hexutil.Uint64(tx.Gas()),
		Data:     hexutil.Bytes(tx.Data()),
	}

	switch tx.Type() {
	case types.LegacyTxType:
		c.GasPrice = (*hexutil.Big)(bigOrZero(tx.GasPrice()))

		// only a signed, replay protected legacy transaction carries its chain id (in V)
		chainID := fallbackChainID
		if v, _, _ := tx.RawSignatureValues(); v != nil && v.Sign() != 0 && tx.Protected() {
			chainID = tx.ChainId()
		}
		if chainID != nil && chainID.Sign() != 0 {
			c.ChainID = (*hexutil.Big)(new(big.Int).Set(chainID))
		}

	case types.AccessListTxType:
		c.setType(tx.Type())
		c.ChainID = (*hexutil.Big)(tx.ChainId())
		c.GasPrice = (*hexutil.Big)(bigOrZero(tx.GasPrice()))
		c.AccessList = tx.AccessList()

	case types.DynamicFeeTxType:
		c.setType(tx.Type())
		c.ChainID = (*hexutil.Big)(tx.ChainId())
		c.MaxFeePerGas = (*hexutil.Big)(bigOrZero(tx.GasFeeCap()))
		c.MaxPriorityFeePerGas = (*hexutil.Big)(bigOrZero(tx.GasTipCap()))
		c.AccessList = tx.AccessList()

	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "transaction type %d", tx.Type())
	}

	return c, nil
}

func fromMutable(tx *MutableTx, fallbackChainID *big.Int) *Canonical {
	c := &Canonical{
		Nonce:    hexutil.Uint64(tx.Nonce),
		To:       tx.To,
		Value:    (*hexutil.Big)(bigOrZero(tx.Value)),
		GasPrice: (*hexutil.Big)(bigOrZero(tx.GasPrice)),
		GasLimit: hexutil.Uint64(tx.Gas),
		Data:     hexutil.Bytes(tx.Data),
	}

	chainID := tx.ChainID
	if chainID == nil || chainID.Sign() == 0 {
		chainID = fallbackChainID
	}
	if chainID != nil && chainID.Sign() != 0 {
		c.ChainID = (*hexutil.Big)(new(big.Int).Set(chainID))
	}

	return c
}

func (c *Canonical) setType(t uint8) {
	typ := hexutil.Uint64(t)
	c.Type = &typ
}

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(x)
}
