package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/httperrors"
	"github/chapool/go-hwkeyring/internal/api/router"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/device/simulator"
)

// WithTestServer returns a fully configured server with an in-memory snapshot store,
// no unlock cooldown and a mock clock. No device is linked yet, see LinkDevice.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, TestServerConfig(), closure)
}

// WithTestServerConfigurable is WithTestServer with a caller provided config.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	closure(NewTestServer(t, cfg))
}

// TestServerConfig is the config WithTestServer starts from.
func TestServerConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Store.Path = ""
	cfg.Device.UnlockCooldown = 0
	cfg.Device.RequestTimeout = 10 * time.Second
	cfg.Bridge.AllowedOrigins = []string{cfg.Device.LinkOrigin}

	return cfg
}

func NewTestServer(t *testing.T, cfg config.Server) *api.Server {
	t.Helper()

	s, err := api.InitNewServerWithTest(cfg, t)
	require.NoError(t, err, "failed to init server")

	router.Init(s)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for _, err := range s.Shutdown(ctx) {
			t.Logf("shutdown: %v", err)
		}
	})

	return s
}

// LinkDevice serves s over HTTP and connects a simulated device as link page.
// It returns once the bridge sees the link.
func LinkDevice(t *testing.T, s *api.Server, opts ...simulator.Option) *simulator.Device {
	t.Helper()

	srv := httptest.NewServer(s.Echo)

	dev := simulator.New(Mnemonic, "", opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = dev.Link(ctx, LinkURL(srv.URL), s.Config.Device.LinkOrigin)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
		dev.Close()
	})

	waitCtx, waitCancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, s.Bridge.WaitForLink(waitCtx), "device never linked")

	return dev
}

// LinkURL turns the base URL of an HTTP server into its websocket link endpoint.
func LinkURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/link"
}

// PerformRequest runs a request against the echo instance of s without a network round trip.
// body is encoded as JSON unless it is nil.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "failed to encode request body")
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseBody decodes the JSON body of res into v.
func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v), "failed to decode response body: %s", res.Body.String())
}

// RequireHTTPError asserts res carries httpErr's status and type and returns the decoded body.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) httperrors.HTTPError {
	t.Helper()

	require.Equal(t, httpErr.Code, res.Result().StatusCode, "unexpected status, body: %s", res.Body.String())

	var got httperrors.HTTPError
	ParseResponseBody(t, res, &got)
	require.Equal(t, httpErr.Type, got.Type)

	return got
}
