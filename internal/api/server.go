package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/keyring/protocol"
	"github/chapool/go-hwkeyring/internal/keyring/store"
	"github/chapool/go-hwkeyring/internal/metrics"
	"github/chapool/go-hwkeyring/internal/transport/wsbridge"
	"github/chapool/go-hwkeyring/internal/util"
)

type Router struct {
	Routes     []*echo.Route
	Root       *echo.Group
	Management *echo.Group
	APIV1      *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config  config.Server
	Clock   time2.Clock
	Metrics *metrics.Service
	Bridge  *wsbridge.Bridge
	Client  *protocol.Client
	Store   *store.Store
	Keyring *keyring.Keyring
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	metrics *metrics.Service,
	bridge *wsbridge.Bridge,
	client *protocol.Client,
	store *store.Store,
	keyring *keyring.Keyring,
) *Server {
	return &Server{
		Config:  cfg,
		Clock:   clock,
		Metrics: metrics,
		Bridge:  bridge,
		Client:  client,
		Store:   store,
		Keyring: keyring,
	}
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Bridge.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

// LoadSnapshot restores the keyring from the store, if a snapshot was saved before.
func (s *Server) LoadSnapshot() error {
	snap, ok, err := s.Store.Load(s.Config.Keyring.Name)
	if err != nil || !ok {
		return err
	}

	return s.Keyring.Deserialize(snap)
}

// SaveSnapshot persists the session. A fresh session has nothing to keep, its snapshot is removed instead.
func (s *Server) SaveSnapshot() error {
	if st := s.Keyring.Status(); !st.Unlocked && len(st.Accounts) == 0 && st.KnownIndices == 0 &&
		st.Page == 0 && st.UnlockedAccount == 0 {
		return s.Store.Delete(s.Config.Keyring.Name)
	}

	return s.Store.Save(s.Config.Keyring.Name, s.Keyring.Serialize())
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Bridge != nil {
		log.Debug().Msg("Disconnecting link pages")

		if err := s.Bridge.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Store != nil {
		log.Debug().Msg("Closing snapshot store")

		if err := s.Store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close snapshot store")
			errs = append(errs, err)
		}
	}

	return errs
}
