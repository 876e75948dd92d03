package sign

import (
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const fromFlag = "from"

func New() *cobra.Command {
	return command.NewSubcommandGroup("sign",
		newTx(),
		newMessage(),
	)
}
