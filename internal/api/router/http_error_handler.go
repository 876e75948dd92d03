package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	accept "github.com/timewasted/go-accept-headers"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/util"
)

// HTTPErrorHandler renders every error as httperrors.HTTPError. Keyring errors are mapped to their status,
// anything unknown becomes a 500 without leaking its message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := util.LogFromContext(c.Request().Context())

	var (
		httpErr *httperrors.HTTPError
		echoErr *echo.HTTPError
	)

	mapped := httperrors.FromKeyringError(err)

	switch {
	case errors.As(mapped, &httpErr):
	case errors.As(mapped, &echoErr):
		httpErr = httperrors.NewFromEcho(echoErr)
	default:
		httpErr = httperrors.NewHTTPError(http.StatusInternalServerError, "generic", http.StatusText(http.StatusInternalServerError)).Wrap(err)
	}

	if httpErr.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", httpErr.Code).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", httpErr.Code).Msg("Request rejected")
	}

	var sendErr error
	switch {
	case c.Request().Method == http.MethodHead:
		sendErr = c.NoContent(httpErr.Code)
	case prefersText(c.Request().Header.Get(echo.HeaderAccept)):
		sendErr = c.String(httpErr.Code, httpErr.Title)
	default:
		sendErr = c.JSON(httpErr.Code, httpErr)
	}

	if sendErr != nil {
		log.Error().Err(sendErr).Msg("Failed to send error response")
	}
}

// prefersText is true when the client explicitly ranks plain text above JSON, e.g. curl probes.
func prefersText(header string) bool {
	if header == "" {
		return false
	}

	ctype, err := accept.Negotiate(header, echo.MIMEApplicationJSON, echo.MIMETextPlain)
	if err != nil {
		return false
	}

	return ctype == echo.MIMETextPlain
}
