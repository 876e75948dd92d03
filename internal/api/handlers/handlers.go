package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/handlers/accounts"
	"github/chapool/go-hwkeyring/internal/api/handlers/common"
	"github/chapool/go-hwkeyring/internal/api/handlers/link"
	"github/chapool/go-hwkeyring/internal/api/handlers/signing"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		accounts.DeleteAccountRoute(s),
		accounts.GetAccountsRoute(s),
		accounts.GetStatusRoute(s),
		accounts.PostAccountsRoute(s),
		accounts.PostForgetRoute(s),
		accounts.PostPageRoute(s),
		accounts.PostUnlockRoute(s),
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		link.GetLinkRoute(s),
		signing.PostSignMessageRoute(s),
		signing.PostSignTransactionRoute(s),
	}
}
