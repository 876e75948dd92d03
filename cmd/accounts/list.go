package accounts

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
)

func newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Prints the active accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig()
			if err != nil {
				return err
			}

			// listing never talks to the device, the bridge is not needed
			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				if err := s.LoadSnapshot(); err != nil {
					return err
				}

				return command.PrintJSON(cmd, s.Keyring.GetAccounts())
			})
		},
	}
}
