package link_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/test"
)

func TestGetLinkRejectsForeignOrigin(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/link", nil, http.Header{"Origin": []string{"http://evil.example"}})
		test.RequireHTTPError(t, res, httperrors.ErrForbiddenOrigin)
		assert.Equal(t, 0, s.Bridge.Links())
	})
}

func TestGetLinkDialForeignOrigin(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		srv := httptest.NewServer(s.Echo)
		defer srv.Close()

		_, resp, err := websocket.DefaultDialer.Dial(test.LinkURL(srv.URL), http.Header{"Origin": []string{"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestLinkedDeviceSignsThroughBridge(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		assert.Equal(t, 1, s.Bridge.Links())

		addrs, err := s.Keyring.AddAccounts(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, test.AccountAt(t, dev, 0), addrs[0])

		msg := []byte("link page round trip")
		sigHex, err := s.Keyring.SignPersonalMessage(t.Context(), addrs[0], hexutil.Encode(msg))
		require.NoError(t, err)

		sig, err := hexutil.Decode(sigHex)
		require.NoError(t, err)
		require.Len(t, sig, crypto.SignatureLength)
		sig[crypto.RecoveryIDOffset] -= 27

		pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
		require.NoError(t, err)
		assert.Equal(t, addrs[0], crypto.PubkeyToAddress(*pub))
	})
}
