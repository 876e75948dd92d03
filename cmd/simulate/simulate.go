package simulate

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/device/simulator"
	"github/chapool/go-hwkeyring/internal/util"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const (
	urlFlag      = "url"
	mnemonicFlag = "mnemonic"
	passwordFlag = "password"
	retryFlag    = "retry"
	keystoreFlag = "keystore"

	//nolint:dupword // Well known development mnemonic with repeated words
	defaultMnemonic = "test test test test test test test test test test test junk"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs a software device as link page of a bridge",
		Long: `Runs a software device derived from --mnemonic and links it to the bridge at --url.

With --keystore the mnemonic is read from an encrypted keystore file, which is created
from --mnemonic on first use. For development only: the seed is held in memory unencrypted.`,
		RunE: simulateCmdFunc,
	}

	cmd.Flags().String(urlFlag, "ws://127.0.0.1:4300/link", "websocket URL of the bridge link endpoint")
	cmd.Flags().String(mnemonicFlag, defaultMnemonic, "mnemonic of the simulated device")
	cmd.Flags().String(passwordFlag, "", "optional mnemonic password")
	cmd.Flags().String(keystoreFlag, "", "encrypted keystore file holding the mnemonic")
	cmd.Flags().Duration(retryFlag, 2*time.Second, "delay between reconnects, 0 disables reconnecting")

	return cmd
}

func simulateCmdFunc(cmd *cobra.Command, _ []string) error {
	url, _ := cmd.Flags().GetString(urlFlag)
	mnemonic, _ := cmd.Flags().GetString(mnemonicFlag)
	password, _ := cmd.Flags().GetString(passwordFlag)
	retry, _ := cmd.Flags().GetDuration(retryFlag)
	keystore, _ := cmd.Flags().GetString(keystoreFlag)

	cfg, err := command.LoadConfig()
	if err != nil {
		return err
	}
	util.SetupLogger(cfg.LoggerConfig())

	if keystore != "" {
		mnemonic, err = mnemonicFromKeystore(cmd, keystore, mnemonic)
		if err != nil {
			return err
		}
	}

	dev := simulator.New(mnemonic, password)
	defer dev.Close()

	ctx := cmd.Context()
	for {
		err := dev.Link(ctx, url, cfg.Device.LinkOrigin)
		if ctx.Err() != nil {
			return nil
		}
		if retry <= 0 {
			return err
		}

		log.Warn().Err(err).Dur("retry", retry).Msg("Link to bridge lost, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}
