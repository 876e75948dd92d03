package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
)

func GetStatusRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/keyring", getStatusHandler(s))
}

func getStatusHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatusResponse{
			Status: s.Keyring.Status(),
			Links:  s.Bridge.Links(),
		})
	}
}
