package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"chore-board/internal/chore"
	"chore-board/internal/service"
)

func addTask(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage chores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTaskAdd(cmd)

	topLevel.AddCommand(cmd)
}

func addTaskAdd(parent *cobra.Command) {
	var (
		userID uint
		kind   string
		value  string
		month  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Schedule a chore for a member over a month",
		Long: `Schedule a chore for a member over a month.

Daily chores get one task per day, weekly chores one per week (the 1st and each
following Monday) and monthly chores a single task starting on the 1st.`,
		Example: `
choreboard task add "Dishes" --user 2 --kind daily --value 0.50
choreboard task add "Vacuum" --user 2 --kind W --value 2 --month 2024-07
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := chore.ParseKind(kind)
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("parse value %q: %w", value, err)
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

			created, err := a.catalogue.CreateMonth(cmd.Context(), service.TaskInput{
				Name:       args[0],
				Kind:       k,
				Value:      amount,
				AssigneeID: userID,
				Month:      m,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "scheduled %d %s task(s) of %q for %s\n", len(created), k, args[0], m.MonthKey())
			return nil
		},
	}

	cmd.Flags().UintVarP(&userID, "user", "u", 0, "id of the assignee")
	cmd.Flags().StringVarP(&kind, "kind", "k", "daily", "daily, weekly or monthly (D, W, M)")
	cmd.Flags().StringVar(&value, "value", "0", "monetary value of one task")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM, defaults to the current one")
	_ = cmd.MarkFlagRequired("user")
	parent.AddCommand(cmd)
}
