package signing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kat-co/vala"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
	"github/chapool/go-hwkeyring/internal/util"
)

type PostSignMessagePayload struct {
	Address string `json:"address"`
	// Data without Personal is a hex encoded 32 byte hash, 0x prefix optional. Personal data is
	// 0x-prefixed hex bytes or UTF-8 text.
	Data     string `json:"data"`
	Personal bool   `json:"personal"`
}

func (p *PostSignMessagePayload) Validate() error {
	return validateAddress(p.Address)
}

type PostSignTransactionPayload struct {
	Address     string           `json:"address"`
	Transaction txnorm.Canonical `json:"transaction"`
}

func (p *PostSignTransactionPayload) Validate() error {
	return validateAddress(p.Address)
}

type SignatureResponse struct {
	Signature string `json:"signature"`
}

type SignedTransactionResponse struct {
	Hash common.Hash   `json:"hash"`
	From string        `json:"from"`
	Raw  hexutil.Bytes `json:"raw"`
}

func validateAddress(addr string) error {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(addr, "address"),
		util.IsHexAddress(addr, "address"),
	).Check()
	if err != nil {
		return httperrors.ErrBadRequestInvalidAddress.WithDetail(err.Error()).Wrap(err)
	}

	return nil
}
