package accounts

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
)

func newRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ADDRESS",
		Short: "Deactivates an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return errors.Errorf("invalid address %q", args[0])
			}
			addr := common.HexToAddress(args[0])

			cfg, err := command.LoadConfig()
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				if err := s.LoadSnapshot(); err != nil {
					return err
				}

				if err := s.Keyring.RemoveAccount(addr); err != nil {
					return err
				}

				if err := s.SaveSnapshot(); err != nil {
					return err
				}

				return command.PrintJSON(cmd, s.Keyring.GetAccounts())
			})
		},
	}
}
