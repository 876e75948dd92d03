package httperrors

import (
	"net/http"
)

var (
	ErrBadRequestInvalidAddress = NewHTTPError(http.StatusBadRequest, "INVALID_ADDRESS", "The given address is not a valid hex address.")
	ErrBadRequestPageDirection  = NewHTTPError(http.StatusBadRequest, "INVALID_PAGE_DIRECTION", "Page direction must be one of first, next or previous.")
	ErrBadRequestAccountCount   = NewHTTPError(http.StatusBadRequest, "INVALID_ACCOUNT_COUNT", "At least one account must be requested.")
	ErrBadRequestTransaction    = NewHTTPError(http.StatusBadRequest, "INVALID_TRANSACTION", "The given transaction cannot be signed.")
	ErrForbiddenOrigin          = NewHTTPError(http.StatusForbidden, "ORIGIN_NOT_ALLOWED", "The link page origin is not allowed.")
)
