package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
)

func GetAccountsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/keyring/accounts", getAccountsHandler(s))
}

func getAccountsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, AccountsResponse{Accounts: s.Keyring.GetAccounts()})
	}
}
