// Package cli wires the chore board's command line: the chat bot server and
// the operator commands that manage users, chores and targets.
package cli

import (
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "choreboard",
		Short:         "Household chore board with a Telegram front-end.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addBot(topLevel)
	addBoard(topLevel)
	addPending(topLevel)
	addUser(topLevel)
	addTask(topLevel)
	addTarget(topLevel)
}
