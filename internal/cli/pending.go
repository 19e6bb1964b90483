package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func addPending(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List completed chores waiting for review.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.reviews.Pending(cmd.Context())
			if err != nil {
				return err
			}
			printPending(color.Output, items)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
