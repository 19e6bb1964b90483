package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chore-board/internal/model"
)

func addUser(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage household members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addUserAdd(cmd)
	addUserList(cmd)

	topLevel.AddCommand(cmd)
}

func addUserAdd(parent *cobra.Command) {
	var user model.User
	var pin string

	cmd := &cobra.Command{
		Use:   "add <first name>",
		Short: "Add a household member",
		Example: `
choreboard user add Alice --role child --pin 1234
choreboard user add Bob --last Smith --role parent --pin 987654
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user.FirstName = args[0]

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.auth.Register(cmd.Context(), user, pin)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "added %s (id %d, %s)\n", created.DisplayName(), created.ID, created.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&user.Role, "role", model.RoleChild, "parent or child")
	cmd.Flags().StringVar(&user.AvatarLink, "avatar", "", "avatar image link")
	cmd.Flags().StringVar(&pin, "pin", "", "initial PIN, 4 to 8 digits")
	_ = cmd.MarkFlagRequired("pin")
	parent.AddCommand(cmd)
}

func addUserList(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List household members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.auth.Users(cmd.Context())
			if err != nil {
				return err
			}
			printUsers(color.Output, users)
			return nil
		},
	}
	parent.AddCommand(cmd)
}
