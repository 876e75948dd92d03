package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostForgetRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/forget", postForgetHandler(s))
}

func postForgetHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		s.Keyring.ForgetDevice()
		log.Info().Msg("Device forgotten")

		if err := s.SaveSnapshot(); err != nil {
			log.Error().Err(err).Msg("Failed to save keyring snapshot")
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
