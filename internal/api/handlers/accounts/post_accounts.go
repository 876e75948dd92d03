package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostAccountsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/accounts", postAccountsHandler(s))
}

func postAccountsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostAccountsPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if body.From != nil {
			s.Keyring.SetAccountToUnlock(*body.From)
		}

		added, err := s.Keyring.AddAccounts(ctx, body.Count)
		if err != nil {
			log.Debug().Err(err).Uint32("count", body.Count).Msg("Failed to add accounts")
			return err
		}

		if err := s.SaveSnapshot(); err != nil {
			log.Error().Err(err).Msg("Failed to save keyring snapshot")
			return err
		}

		return c.JSON(http.StatusCreated, AccountsResponse{Accounts: added})
	}
}
