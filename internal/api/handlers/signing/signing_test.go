package signing_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/handlers/signing"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/device/simulator"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
	"github/chapool/go-hwkeyring/internal/test"
)

func canonicalDynamicFee(t *testing.T) txnorm.Canonical {
	t.Helper()

	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	chainID := hexutil.Big(*big.NewInt(11155111))
	txType := hexutil.Uint64(types.DynamicFeeTxType)
	tip := hexutil.Big(*big.NewInt(1_000_000_000))
	feeCap := hexutil.Big(*big.NewInt(30_000_000_000))
	value := hexutil.Big(*big.NewInt(1))

	return txnorm.Canonical{
		Type:                 &txType,
		ChainID:              &chainID,
		Nonce:                7,
		To:                   &to,
		Value:                &value,
		MaxPriorityFeePerGas: &tip,
		MaxFeePerGas:         &feeCap,
		GasLimit:             21000,
	}
}

func TestPostSignTransaction(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 2)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalDynamicFee(t),
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var signed signing.SignedTransactionResponse
		test.ParseResponseBody(t, res, &signed)

		var tx types.Transaction
		require.NoError(t, tx.UnmarshalBinary(signed.Raw))
		assert.Equal(t, signed.Hash, tx.Hash())

		sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), &tx)
		require.NoError(t, err)
		assert.Equal(t, from, sender)

		// the index was recovered by scanning
		index, ok := s.Keyring.AddressIndex(from)
		require.True(t, ok)
		assert.Equal(t, uint32(2), index)
	})
}

func canonicalLegacy(chainID int64) txnorm.Canonical {
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gasPrice := hexutil.Big(*big.NewInt(1_000_000_000))
	value := hexutil.Big(*big.NewInt(1))

	c := txnorm.Canonical{
		Nonce:    3,
		To:       &to,
		Value:    &value,
		GasPrice: &gasPrice,
		GasLimit: 21000,
	}
	if chainID != 0 {
		id := hexutil.Big(*big.NewInt(chainID))
		c.ChainID = &id
	}

	return c
}

func TestPostSignLegacyTransactionKeepsChainID(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		require.Nil(t, s.Keyring.ChainID())

		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalLegacy(5),
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var signed signing.SignedTransactionResponse
		test.ParseResponseBody(t, res, &signed)

		var tx types.Transaction
		require.NoError(t, tx.UnmarshalBinary(signed.Raw))
		assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
		assert.True(t, tx.Protected())
		assert.Equal(t, big.NewInt(5), tx.ChainId())

		sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(5)), &tx)
		require.NoError(t, err)
		assert.Equal(t, from, sender)
	})
}

func TestPostSignLegacyTransactionChainIDConflict(t *testing.T) {
	cfg := test.TestServerConfig()
	cfg.Keyring.ChainID = 17000

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalLegacy(5),
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestChainID)
		assert.Equal(t, 0, dev.Requests(protocol.SignTransaction))

		// without its own chain id the configured one applies
		res = test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalLegacy(0),
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var signed signing.SignedTransactionResponse
		test.ParseResponseBody(t, res, &signed)

		var tx types.Transaction
		require.NoError(t, tx.UnmarshalBinary(signed.Raw))
		assert.True(t, tx.Protected())
		assert.Equal(t, big.NewInt(17000), tx.ChainId())
	})
}

func TestPostSignTransactionSignerMismatch(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s, simulator.WithWrongKey())
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalDynamicFee(t),
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadGatewaySigner)
	})
}

func TestPostSignTransactionDeviceRejects(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s, simulator.WithRejection("user denied"))
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     from.Hex(),
			Transaction: canonicalDynamicFee(t),
		}, nil)
		body := test.RequireHTTPError(t, res, httperrors.ErrBadGatewayDevice)
		assert.Equal(t, "user denied", body.Detail)
	})
}

func TestPostSignTransactionUnknownAddress(t *testing.T) {
	cfg := test.TestServerConfig()
	cfg.Keyring.MaxIndex = 20

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		test.LinkDevice(t, s)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     "0x00000000000000000000000000000000000000bb",
			Transaction: canonicalDynamicFee(t),
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundAddress)
	})
}

func TestPostSignTransactionInvalidAddress(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/transaction", signing.PostSignTransactionPayload{
			Address:     "nope",
			Transaction: canonicalDynamicFee(t),
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestInvalidAddress)
	})
}

func TestPostSignPersonalMessage(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/message", signing.PostSignMessagePayload{
			Address:  from.Hex(),
			Data:     hexutil.Encode([]byte("hello device")),
			Personal: true,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var sig signing.SignatureResponse
		test.ParseResponseBody(t, res, &sig)

		raw, err := hexutil.Decode(sig.Signature)
		require.NoError(t, err)
		require.Len(t, raw, crypto.SignatureLength)
		assert.Contains(t, []byte{27, 28}, raw[crypto.RecoveryIDOffset])
	})
}

func TestPostSignPersonalMessageText(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/message", signing.PostSignMessagePayload{
			Address:  from.Hex(),
			Data:     "Sign in to example.org",
			Personal: true,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var sig signing.SignatureResponse
		test.ParseResponseBody(t, res, &sig)

		raw, err := hexutil.Decode(sig.Signature)
		require.NoError(t, err)
		raw[crypto.RecoveryIDOffset] -= 27

		pub, err := crypto.SigToPub(accounts.TextHash([]byte("Sign in to example.org")), raw)
		require.NoError(t, err)
		assert.Equal(t, from, crypto.PubkeyToAddress(*pub))
	})
}

func TestPostSignRawMessageRequiresHash(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		dev := test.LinkDevice(t, s)
		from := test.AccountAt(t, dev, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keyring/sign/message", signing.PostSignMessagePayload{
			Address: from.Hex(),
			Data:    "0xdeadbeef",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestMessage)
	})
}
