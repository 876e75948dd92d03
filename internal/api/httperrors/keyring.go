package httperrors

import (
	"net/http"

	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/keyring"
)

var (
	ErrConflictNotUnlocked     = NewHTTPError(http.StatusConflict, "KEYRING_LOCKED", "The keyring is locked, unlock the device first.")
	ErrNotFoundAddress         = NewHTTPError(http.StatusNotFound, "UNKNOWN_ADDRESS", "The address is not derived from the connected device.")
	ErrNotFoundAccount         = NewHTTPError(http.StatusNotFound, "ACCOUNT_NOT_FOUND", "The address is not an active account of this keyring.")
	ErrConflictIndex           = NewHTTPError(http.StatusConflict, "INDEX_CONFLICT", "The address index contradicts a known entry.")
	ErrBadGatewaySigner        = NewHTTPError(http.StatusBadGateway, "SIGNER_MISMATCH", "The device signed with a different account than requested.")
	ErrBadGatewayDevice        = NewHTTPError(http.StatusBadGateway, "DEVICE_ERROR", "The device failed to handle the request.")
	ErrBadGatewayInvalidReply  = NewHTTPError(http.StatusBadGateway, "INVALID_DEVICE_REPLY", "The device reply could not be decoded.")
	ErrGatewayTimeoutDevice    = NewHTTPError(http.StatusGatewayTimeout, "DEVICE_TIMEOUT", "The device did not answer in time.")
	ErrNotImplementedOperation = NewHTTPError(http.StatusNotImplemented, "UNSUPPORTED", "The operation is not supported on this device.")
	ErrBadRequestMessage       = NewHTTPError(http.StatusBadRequest, "INVALID_MESSAGE", "The message cannot be signed.")
	ErrBadRequestShape         = NewHTTPError(http.StatusBadRequest, "UNSUPPORTED_TRANSACTION", "The transaction type is not supported.")
	ErrBadRequestHardenedIndex = NewHTTPError(http.StatusBadRequest, "HARDENED_INDEX", "Account indices must be below 2^31.")
	ErrBadRequestChainID       = NewHTTPError(http.StatusBadRequest, "CHAIN_ID_CONFLICT", "The transaction chain id differs from the configured chain.")
)

// FromKeyringError maps keyring failures to their HTTP representation. Unknown errors are returned unchanged
// and end up as internal server errors.
func FromKeyringError(err error) error {
	var transportErr *keyring.TransportError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotUnlocked):
		return ErrConflictNotUnlocked.Wrap(err)
	case errors.Is(err, keyring.ErrUnknownAddress):
		return ErrNotFoundAddress.Wrap(err)
	case errors.Is(err, keyring.ErrAddressNotFound):
		return ErrNotFoundAccount.Wrap(err)
	case errors.Is(err, keyring.ErrIndexConflict):
		return ErrConflictIndex.Wrap(err)
	case errors.Is(err, keyring.ErrSignerMismatch):
		return ErrBadGatewaySigner.Wrap(err)
	case errors.Is(err, keyring.ErrRequestTimeout):
		return ErrGatewayTimeoutDevice.Wrap(err)
	case errors.Is(err, keyring.ErrInvalidReply):
		return ErrBadGatewayInvalidReply.Wrap(err)
	case errors.As(err, &transportErr):
		return ErrBadGatewayDevice.WithDetail(transportErr.Message).Wrap(err)
	case errors.Is(err, keyring.ErrUnsupported):
		return ErrNotImplementedOperation.Wrap(err)
	case errors.Is(err, keyring.ErrUnsupportedShape):
		return ErrBadRequestShape.Wrap(err)
	case errors.Is(err, keyring.ErrHardenedIndex):
		return ErrBadRequestHardenedIndex.Wrap(err)
	case errors.Is(err, keyring.ErrChainIDConflict):
		return ErrBadRequestChainID.Wrap(err)
	case errors.Is(err, keyring.ErrInvalidMessage):
		return ErrBadRequestMessage.Wrap(err)
	default:
		return err
	}
}
