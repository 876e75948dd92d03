package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostUnlockRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/unlock", postUnlockHandler(s))
}

func postUnlockHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		status, err := s.Keyring.Unlock(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to unlock keyring")
			return err
		}

		return c.JSON(http.StatusOK, UnlockResponse{Status: status})
	}
}
