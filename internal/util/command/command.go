package command

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/router"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/util"
)

// FlagConfig is the persistent flag naming a config file.
const FlagConfig = "config"

// NewSubcommandGroup returns a command without its own action that only groups subcommands.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: use + " related subcommands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// WithServer initializes a server from cfg, runs f and shuts the server down again.
// The echo server is set up but not started.
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	util.SetupLogger(cfg.LoggerConfig())

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	router.Init(s)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Bridge.ShutdownTimeout)
		defer cancel()

		for _, err := range s.Shutdown(shutdownCtx) {
			log.Error().Err(err).Msg("Failed to gracefully shut down server")
		}
	}()

	return f(ctx, s)
}

// WithKeyring runs f against a keyring restored from the snapshot store, with the bridge listening for the
// device link page. The snapshot is saved afterwards, also when f fails.
func WithKeyring(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	return WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		if err := s.LoadSnapshot(); err != nil {
			log.Error().Err(err).Str("keyring", cfg.Keyring.Name).Msg("Failed to load keyring snapshot")
			return err
		}

		go func() {
			if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Bridge server stopped")
			}
		}()

		log.Info().Str("address", cfg.Bridge.ListenAddress).Str("link_origin", cfg.Device.LinkOrigin).Msg("Waiting for the device link page")

		runErr := f(ctx, s)

		if err := s.SaveSnapshot(); err != nil {
			log.Error().Err(err).Str("keyring", cfg.Keyring.Name).Msg("Failed to save keyring snapshot")
			if runErr == nil {
				runErr = err
			}
		}

		return runErr
	})
}

// LoadConfig reads the ENV config and applies the config file and the flags bound to the global viper instance.
func LoadConfig() (config.Server, error) {
	cfg := config.DefaultServiceConfigFromEnv()

	v := viper.GetViper()
	if path := v.GetString(FlagConfig); path != "" {
		if err := config.ReadConfigFile(v, path); err != nil {
			return cfg, err
		}
	}

	cfg.ApplyOverrides(v)

	return cfg, nil
}

// PrintJSON writes v indented to the command's output.
func PrintJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
