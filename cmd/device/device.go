package device

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/util/command"
	"golang.org/x/term"
)

const yesFlag = "yes"

func New() *cobra.Command {
	return command.NewSubcommandGroup("device",
		newUnlock(),
		newForget(),
	)
}

func newUnlock() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Fetches the extended public key from the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig()
			if err != nil {
				return err
			}

			return command.WithKeyring(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				status, err := s.Keyring.Unlock(ctx)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, map[string]any{"status": status})
			})
		},
	}
}

func newForget() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Drops every account and index of the device from the snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool(yesFlag)

			cfg, err := command.LoadConfig()
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := confirm(cmd, fmt.Sprintf("Forget device of keyring %q?", cfg.Keyring.Name))
				if err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				if err := s.LoadSnapshot(); err != nil {
					return err
				}

				s.Keyring.ForgetDevice()

				return s.SaveSnapshot()
			})
		},
	}

	cmd.Flags().BoolP(yesFlag, "y", false, "do not ask for confirmation")

	return cmd
}

// confirm asks question on an interactive terminal. Without one, --yes is required.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal, pass --yes to confirm")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false, errors.Wrap(err, "failed to read confirmation")
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes", nil
}
