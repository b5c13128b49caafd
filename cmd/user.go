package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateLogin bool

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := simr.Users().Create(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("User %q created.", name)))
		if userCreateLogin {
			sess.Login(name)
			if err := sess.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Success("Logged in as " + name))
		} else {
			fmt.Println(ui.Hint("Log in with: simchain login " + name))
		}
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := simr.Users().List()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println(ui.Info("No users yet."))
			fmt.Println(ui.Hint("Create one with: simchain user create alice"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "User", Width: 20},
			{Title: "Wallets", Width: 8},
			{Title: "Active", Width: 8},
		})
		for _, u := range users {
			ws, err := simr.Wallets().List(u)
			if err != nil {
				return err
			}
			active := ""
			if u == sess.User {
				active = "✓"
			}
			t.AddRow(ui.Row{u, fmt.Sprintf("%d", len(ws)), active})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d user(s)", len(users))))
		return nil
	},
}

func init() {
	userCreateCmd.Flags().BoolVar(&userCreateLogin, "login", false, "log in as the new user")
	userCmd.AddCommand(userCreateCmd, userListCmd)
}
