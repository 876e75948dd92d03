package protocol

import (
	"github.com/pkg/errors"
)

var (
	// ErrRequestTimeout is returned when the device did not answer within the request timeout.
	ErrRequestTimeout = errors.New("device request timed out")

	ErrInvalidReply = errors.New("invalid device reply")
)

// TransportError carries a failure reported by the transport or the device, message unchanged.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return "device transport: " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
