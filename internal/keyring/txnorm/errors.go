package txnorm

import "github.com/pkg/errors"

var (
	// ErrUnsupportedShape is returned for transaction values the normalizer cannot classify.
	ErrUnsupportedShape = errors.New("unsupported transaction shape")

	// ErrSignerMismatch is returned when a device signature does not belong to the requested account.
	ErrSignerMismatch = errors.New("signer mismatch")

	// ErrChainIDConflict is returned when a payload's chain id differs from the configured one.
	ErrChainIDConflict = errors.New("chain id conflicts with the configured chain")

	ErrInvalidSignature = errors.New("invalid signature components")
	ErrInvalidMessage   = errors.New("invalid message")

	// ErrFrozen is returned by SetSignature on a frozen MutableTx.
	ErrFrozen = errors.New("transaction is frozen")
)
