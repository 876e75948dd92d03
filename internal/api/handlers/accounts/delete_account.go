package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/util"
)

func DeleteAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.DELETE("/keyring/accounts/:address", deleteAccountHandler(s))
}

func deleteAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		param := c.Param("address")
		if !common.IsHexAddress(param) {
			return httperrors.ErrBadRequestInvalidAddress
		}

		if err := s.Keyring.RemoveAccount(common.HexToAddress(param)); err != nil {
			log.Debug().Err(err).Str("address", param).Msg("Failed to remove account")
			return err
		}

		if err := s.SaveSnapshot(); err != nil {
			log.Error().Err(err).Msg("Failed to save keyring snapshot")
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
