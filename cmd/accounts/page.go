package accounts

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/keyring"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const (
	firstFlag    = "first"
	previousFlag = "previous"
	rpcFlag      = "rpc"

	balanceTimeout = 10 * time.Second
)

func newPage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Shows the next page of device accounts",
		Long: `Shows the next page of device accounts.

Unlocks the device first if needed. With --rpc the balance of every account
is fetched from the given Ethereum JSON-RPC endpoint.`,
		RunE: pageCmdFunc,
	}

	cmd.Flags().Bool(firstFlag, false, "rewind to the first page")
	cmd.Flags().Bool(previousFlag, false, "go back one page")
	cmd.Flags().String(rpcFlag, "", "Ethereum JSON-RPC endpoint to fetch balances from")
	cmd.MarkFlagsMutuallyExclusive(firstFlag, previousFlag)

	return cmd
}

func pageCmdFunc(cmd *cobra.Command, _ []string) error {
	first, _ := cmd.Flags().GetBool(firstFlag)
	previous, _ := cmd.Flags().GetBool(previousFlag)
	rpcURL, _ := cmd.Flags().GetString(rpcFlag)

	cfg, err := command.LoadConfig()
	if err != nil {
		return err
	}

	return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		move := s.Keyring.NextPage
		switch {
		case first:
			move = s.Keyring.FirstPage
		case previous:
			move = s.Keyring.PreviousPage
		}

		page, err := move(ctx)
		if err != nil {
			return err
		}

		if rpcURL != "" {
			if err := fillBalances(ctx, rpcURL, page); err != nil {
				return err
			}
		}

		return command.PrintJSON(cmd, page)
	})
}

// fillBalances sets the latest balance of every account. Accounts whose lookup fails keep a nil balance.
func fillBalances(ctx context.Context, rpcURL string, page []keyring.Account) error {
	ctx, cancel := context.WithTimeout(ctx, balanceTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", rpcURL)
	}
	defer client.Close()

	for i := range page {
		balance, err := client.BalanceAt(ctx, page[i].Address, nil)
		if err != nil {
			log.Warn().Err(err).Str("address", page[i].Address.Hex()).Msg("Failed to fetch balance")
			continue
		}

		page[i].Balance = balance
	}

	return nil
}
