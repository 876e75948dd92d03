package link

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/transport/wsbridge"
)

func GetLinkRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/link", getLinkHandler(s))
}

// getLinkHandler upgrades the device link page to a websocket and blocks until it disconnects.
func getLinkHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := s.Bridge.Serve(c.Response(), c.Request())
		if errors.Is(err, wsbridge.ErrOriginNotAllowed) {
			return httperrors.ErrForbiddenOrigin.Wrap(err)
		}

		return err
	}
}
