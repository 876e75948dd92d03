package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-hwkeyring/cmd/accounts"
	"github/chapool/go-hwkeyring/cmd/bridge"
	"github/chapool/go-hwkeyring/cmd/device"
	"github/chapool/go-hwkeyring/cmd/probe"
	"github/chapool/go-hwkeyring/cmd/sign"
	"github/chapool/go-hwkeyring/cmd/simulate"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Hardware wallet keyring",
	Long: `Hardware wallet keyring

Manages accounts of a hardware wallet reachable through a device link page and signs
transactions and messages with it. The link page connects to the bridge over websocket.
Configuration is read from ENV, an optional config file and flags, in increasing precedence.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	flags := rootCmd.PersistentFlags()
	flags.String(command.FlagConfig, "", "config file (json, yaml or toml)")
	flags.String("keyring", "", "name of the keyring snapshot")
	flags.String("store", "", "directory of the snapshot store")
	flags.String("bridge-address", "", "listen address of the bridge")
	flags.String("link-origin", "", "origin of the device link page")
	flags.Int64("chain-id", 0, "chain id for legacy transactions without one")

	for key, flag := range map[string]string{
		command.FlagConfig:       command.FlagConfig,
		config.KeyKeyringName:    "keyring",
		config.KeyStorePath:      "store",
		config.KeyBridgeAddress:  "bridge-address",
		config.KeyLinkOrigin:     "link-origin",
		config.KeyKeyringChainID: "chain-id",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatal().Err(err).Str("flag", flag).Msg("Failed to bind flag")
		}
	}

	// attach the subcommands
	rootCmd.AddCommand(
		accounts.New(),
		bridge.New(),
		device.New(),
		probe.New(),
		sign.New(),
		simulate.New(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		stop()
		os.Exit(1) //nolint:gocritic // stop is called above
	}
}
