package accounts

import (
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("accounts",
		newPage(),
		newAdd(),
		newList(),
		newRemove(),
	)
}
