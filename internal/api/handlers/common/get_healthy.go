package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util"
)

type Health struct {
	Ready       bool `json:"ready"`
	Links       int  `json:"links"`
	Unlocked    bool `json:"unlocked"`
	CoolingDown bool `json:"coolingDown"`
}

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Health check
// Reports whether a device link page is attached. A missing link page is not unhealthy,
// requests simply wait for one.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.JSON(StatusNotReady, Health{})
		}

		health := Health{
			Ready:       true,
			Links:       s.Bridge.Links(),
			Unlocked:    s.Keyring.IsUnlocked(),
			CoolingDown: s.Client.CoolingDown(),
		}

		if err := s.Store.Ping(); err != nil {
			util.LogFromContext(c.Request().Context()).Error().Err(err).Msg("Health probe failed")
			health.Ready = false
			return c.JSON(StatusNotReady, health)
		}

		return c.JSON(http.StatusOK, health)
	}
}
