package sign

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const (
	dataFlag     = "data"
	personalFlag = "personal"
)

func newMessage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Signs a message with a device account",
		Long: `Signs --data with the account --from.

With --personal the data is signed as a personal message (EIP-191): 0x-prefixed
hex is signed as the bytes it encodes, anything else as UTF-8 text. Otherwise
it must be a hex encoded 32 byte hash.`,
		RunE: messageCmdFunc,
	}

	cmd.Flags().String(fromFlag, "", "address of the signing account")
	cmd.Flags().String(dataFlag, "", "message, hex or text with --personal")
	cmd.Flags().Bool(personalFlag, false, "sign as personal message")
	_ = cmd.MarkFlagRequired(fromFlag)
	_ = cmd.MarkFlagRequired(dataFlag)

	return cmd
}

func messageCmdFunc(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString(fromFlag)
	data, _ := cmd.Flags().GetString(dataFlag)
	personal, _ := cmd.Flags().GetBool(personalFlag)

	if !common.IsHexAddress(from) {
		return errors.Errorf("invalid address %q", from)
	}
	addr := common.HexToAddress(from)

	cfg, err := command.LoadConfig()
	if err != nil {
		return err
	}

	return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		sign := s.Keyring.SignMessage
		if personal {
			sign = s.Keyring.SignPersonalMessage
		}

		signature, err := sign(ctx, addr, data)
		if err != nil {
			return err
		}

		return command.PrintJSON(cmd, map[string]string{"signature": signature})
	})
}
