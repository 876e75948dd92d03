package accounts

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostPageRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/accounts/page", postPageHandler(s))
}

func postPageHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostPagePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		var move func(context.Context) ([]keyring.Account, error)
		switch body.Direction {
		case DirectionFirst:
			move = s.Keyring.FirstPage
		case DirectionNext:
			move = s.Keyring.NextPage
		default:
			move = s.Keyring.PreviousPage
		}

		page, err := move(ctx)
		if err != nil {
			log.Debug().Err(err).Str("direction", body.Direction).Msg("Failed to load account page")
			return err
		}

		if err := s.SaveSnapshot(); err != nil {
			log.Error().Err(err).Msg("Failed to save keyring snapshot")
			return err
		}

		return c.JSON(http.StatusOK, PageResponse{Page: s.Keyring.Status().Page, Accounts: page})
	}
}
