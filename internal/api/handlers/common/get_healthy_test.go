package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/handlers/common"
	"github/chapool/go-hwkeyring/internal/test"
)

func TestGetHealthyWithoutLink(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var health common.Health
		test.ParseResponseBody(t, res, &health)
		assert.Equal(t, common.Health{Ready: true}, health)
	})
}

func TestGetHealthyReportsLink(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		test.LinkDevice(t, s)

		_, err := s.Keyring.Unlock(t.Context())
		require.NoError(t, err)

		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var health common.Health
		test.ParseResponseBody(t, res, &health)
		assert.Equal(t, 1, health.Links)
		assert.True(t, health.Unlocked)
		assert.False(t, health.CoolingDown)
	})
}

func TestGetHealthyStoreClosed(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		require.NoError(t, s.Store.Close())

		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, common.StatusNotReady, res.Result().StatusCode)
	})
}
