package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chore-board/internal/chore"
)

func addBoard(topLevel *cobra.Command) {
	var (
		userID uint
		month  string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print a member's month board.",
		Example: `
choreboard board --user 2
choreboard board --user 2 --month 2024-06
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := chore.Today()
			m := today.MonthStart()
			if month != "" {
				var err error
				if m, err = chore.ParseMonth(month); err != nil {
					return err
				}
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			owner, err := a.users.FindByID(ctx, userID)
			if err != nil {
				return err
			}
			data, err := a.boards.Fetch(ctx, owner.ID, m)
			if err != nil {
				return err
			}
			board := chore.Project(data.Tasks, data.Month)
			summary := chore.Summarize(data.Tasks, data.Month, today, data.Target)
			printBoard(color.Output, *owner, board, summary, today)
			return nil
		},
	}

	cmd.Flags().UintVarP(&userID, "user", "u", 0, "id of the household member")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM, defaults to the current one")
	_ = cmd.MarkFlagRequired("user")
	topLevel.AddCommand(cmd)
}
