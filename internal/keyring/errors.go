package keyring

import (
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/index"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/session"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
)

var (
	ErrNotUnlocked     = derive.ErrNotUnlocked
	ErrHardenedIndex   = derive.ErrHardenedIndex
	ErrUnknownAddress  = index.ErrUnknownAddress
	ErrIndexConflict   = index.ErrIndexConflict
	ErrAddressNotFound = session.ErrAddressNotFound
	ErrSignerMismatch  = txnorm.ErrSignerMismatch
	ErrRequestTimeout  = protocol.ErrRequestTimeout
	ErrInvalidReply    = protocol.ErrInvalidReply

	ErrUnsupportedShape    = txnorm.ErrUnsupportedShape
	ErrUnsupportedSnapshot = session.ErrUnsupportedSnapshot
	ErrInvalidMessage      = txnorm.ErrInvalidMessage
	ErrChainIDConflict     = txnorm.ErrChainIDConflict

	// ErrUnsupported is returned for operations that would need the private key on the host.
	ErrUnsupported = errors.New("not supported on this device")
)

// TransportError is any failure the device channel reported, original message preserved.
type TransportError = protocol.TransportError
