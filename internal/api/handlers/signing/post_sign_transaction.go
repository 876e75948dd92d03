package signing

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/util"
)

func PostSignTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/keyring/sign/transaction", postSignTransactionHandler(s))
}

func postSignTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostSignTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		addr := common.HexToAddress(body.Address)

		if _, err := body.Transaction.Transaction(); err != nil {
			return httperrors.ErrBadRequestTransaction.WithDetail(err.Error()).Wrap(err)
		}

		signed, err := s.Keyring.SignCanonical(ctx, addr, &body.Transaction)
		if err != nil {
			log.Debug().Err(err).Str("address", addr.Hex()).Msg("Failed to sign transaction")
			return err
		}

		raw, err := signed.MarshalBinary()
		if err != nil {
			return errors.Wrap(err, "failed to encode signed transaction")
		}

		return c.JSON(http.StatusOK, SignedTransactionResponse{
			Hash: signed.Hash(),
			From: addr.Hex(),
			Raw:  raw,
		})
	}
}
