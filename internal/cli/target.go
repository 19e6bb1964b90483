package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"chore-board/internal/chore"
)

func addTarget(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage monthly reward targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTargetSet(cmd)

	topLevel.AddCommand(cmd)
}

func addTargetSet(parent *cobra.Command) {
	var (
		userID uint
		month  string
	)

	cmd := &cobra.Command{
		Use:   "set <amount>",
		Short: "Set a member's reward target for a month",
		Example: `
choreboard target set 25 --user 2
choreboard target set 30.50 --user 2 --month 2024-07
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("parse amount %q: %w", args[0], err)
			}
			if amount.IsNegative() {
				return fmt.Errorf("target must not be negative")
			}
			m := chore.Today().MonthStart()
			if month != "" {
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
			if err := a.catalogue.SetTarget(ctx, userID, m, amount); err != nil {
				return err
			}
			if err := a.boards.RefreshAchieved(ctx, userID, m); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "target for user %d in %s set to %s\n", userID, m.MonthKey(), amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().UintVarP(&userID, "user", "u", 0, "id of the household member")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM, defaults to the current one")
	_ = cmd.MarkFlagRequired("user")
	parent.AddCommand(cmd)
}
