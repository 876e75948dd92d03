package accounts

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/keyring/index"
	"github/chapool/go-hwkeyring/internal/util"
)

const (
	DirectionFirst    = "first"
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

type PostPagePayload struct {
	Direction string `json:"direction"`
}

func (p *PostPagePayload) Validate() error {
	err := vala.BeginValidation().Validate(
		util.OneOf(p.Direction, "direction", DirectionFirst, DirectionNext, DirectionPrevious),
	).Check()
	if err != nil {
		return httperrors.ErrBadRequestPageDirection.Wrap(err)
	}

	return nil
}

// MaxAccountCount bounds the accounts added by a single request.
const MaxAccountCount = index.DefaultMaxIndex

type PostAccountsPayload struct {
	Count uint32 `json:"count"`
	// From moves the cursor before adding, the current cursor is used when omitted.
	From *uint32 `json:"from,omitempty"`
}

func (p *PostAccountsPayload) Validate() error {
	err := vala.BeginValidation().Validate(
		vala.GreaterThan(int(p.Count), 0, "count"),
		util.AtMost(int(p.Count), int(MaxAccountCount), "count"),
	).Check()
	if err != nil {
		return httperrors.ErrBadRequestAccountCount.Wrap(err)
	}

	return nil
}

type StatusResponse struct {
	keyring.Status

	Links int `json:"links"`
}

type UnlockResponse struct {
	Status keyring.UnlockStatus `json:"status"`
}

type AccountsResponse struct {
	Accounts []common.Address `json:"accounts"`
}

type PageResponse struct {
	Page     int               `json:"page"`
	Accounts []keyring.Account `json:"accounts"`
}
