package signing

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostSignMessageRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/sign/message", postSignMessageHandler(s))
}

func postSignMessageHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostSignMessagePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		addr := common.HexToAddress(body.Address)

		var (
			signature string
			err       error
		)
		if body.Personal {
			signature, err = s.Keyring.SignPersonalMessage(ctx, addr, body.Data)
		} else {
			signature, err = s.Keyring.SignMessage(ctx, addr, body.Data)
		}
		if err != nil {
			log.Debug().Err(err).Str("address", addr.Hex()).Bool("personal", body.Personal).Msg("Failed to sign message")
			return err
		}

		return c.JSON(http.StatusOK, SignatureResponse{Signature: signature})
	}
}
