package accounts

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const (
	countFlag = "count"
	fromFlag  = "from"
)

func newAdd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Activates accounts of the device",
		Long: `Activates --count accounts starting at the account cursor, or at --from when given.
Prints all active accounts.`,
		RunE: addCmdFunc,
	}

	cmd.Flags().Uint32P(countFlag, "n", 1, "number of accounts to activate")
	cmd.Flags().Uint32(fromFlag, 0, "index of the first account to activate")

	return cmd
}

func addCmdFunc(cmd *cobra.Command, _ []string) error {
	count, _ := cmd.Flags().GetUint32(countFlag)
	from, _ := cmd.Flags().GetUint32(fromFlag)
	fromSet := cmd.Flags().Changed(fromFlag)

	cfg, err := command.LoadConfig()
	if err != nil {
		return err
	}

	return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		if fromSet {
			s.Keyring.SetAccountToUnlock(from)
		}

		active, err := s.Keyring.AddAccounts(ctx, count)
		if err != nil {
			return err
		}

		return command.PrintJSON(cmd, active)
	})
}
