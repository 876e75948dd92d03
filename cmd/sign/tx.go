package sign

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/keyring/txnorm"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const fileFlag = "file"

func newTx() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Signs a transaction with a device account",
		Long: `Signs the transaction in --file with the account --from and prints the raw signed transaction.

The file holds the transaction as JSON with 0x-hex numbers:
  {"type": "0x2", "chainId": "0xaa36a7", "nonce": "0x0", "to": "0x...", "value": "0x1",
   "maxFeePerGas": "0x...", "maxPriorityFeePerGas": "0x...", "gasLimit": "0x5208", "data": "0x"}
Legacy transactions use gasPrice and are signed EIP-155 for their chainId. Without one, --chain-id is
applied; both given must agree.`,
		RunE: txCmdFunc,
	}

	cmd.Flags().String(fromFlag, "", "address of the signing account")
	cmd.Flags().StringP(fileFlag, "f", "", "transaction JSON file, - reads stdin")
	_ = cmd.MarkFlagRequired(fromFlag)
	_ = cmd.MarkFlagRequired(fileFlag)

	return cmd
}

type signedTx struct {
	Hash common.Hash   `json:"hash"`
	Raw  hexutil.Bytes `json:"raw"`
}

func txCmdFunc(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString(fromFlag)
	file, _ := cmd.Flags().GetString(fileFlag)

	if !common.IsHexAddress(from) {
		return errors.Errorf("invalid address %q", from)
	}
	addr := common.HexToAddress(from)

	c, err := readTransaction(cmd, file)
	if err != nil {
		return err
	}

	cfg, err := command.LoadConfig()
	if err != nil {
		return err
	}

	return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		signed, err := s.Keyring.SignCanonical(ctx, addr, c)
		if err != nil {
			return err
		}

		raw, err := signed.MarshalBinary()
		if err != nil {
			return errors.Wrap(err, "failed to encode signed transaction")
		}

		return command.PrintJSON(cmd, signedTx{Hash: signed.Hash(), Raw: raw})
	})
}

func readTransaction(cmd *cobra.Command, file string) (*txnorm.Canonical, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read transaction from %s", file)
	}

	var c txnorm.Canonical
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction")
	}

	if _, err := c.Transaction(); err != nil {
		return nil, err
	}

	return &c, nil
}
