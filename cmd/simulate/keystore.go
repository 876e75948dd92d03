package simulate

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/device/simulator"
	"golang.org/x/term"
)

const minPasswordLength = 8

// mnemonicFromKeystore opens the keystore at path, creating it from mnemonic when it does not exist yet.
func mnemonicFromKeystore(cmd *cobra.Command, path string, mnemonic string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		ks, err := simulator.ReadKeystore(path)
		if err != nil {
			return "", err
		}

		password, err := promptPassword(cmd, "Enter keystore password: ")
		if err != nil {
			return "", err
		}

		return simulator.DecryptMnemonic(ks, password)
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "failed to stat keystore %s", path)
	}

	log.Info().Str("keystore", path).Msg("Keystore not found, sealing the given mnemonic")

	password, err := promptPassword(cmd, fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	confirm, err := promptPassword(cmd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}

	ks, err := simulator.EncryptMnemonic(mnemonic, password, simulator.StandardScryptParams())
	if err != nil {
		return "", err
	}

	if err := simulator.WriteKeystore(path, ks); err != nil {
		return "", err
	}

	return mnemonic, nil
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal, cannot read keystore password")
	}

	fmt.Fprint(cmd.OutOrStdout(), prompt)

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	fmt.Fprintln(cmd.OutOrStdout())

	return string(passwordBytes), nil
}
