package bridge

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("bridge",
		newServe(),
	)
}

func newServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the link endpoint and the keyring HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig()
			if err != nil {
				return err
			}

			return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				log.Info().Str("address", cfg.Bridge.ListenAddress).Msg("Bridge serving, interrupt to stop")
				<-ctx.Done()

				return nil
			})
		},
	}
}
