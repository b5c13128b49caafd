package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login [user]",
	Short: "Select the active user",
	Long: `Select the user later commands act as. There are no passwords:
logging in only picks whose wallets you are looking at.

Without an argument an interactive picker lists every user.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			users, err := simr.Users().List()
			if err != nil {
				return err
			}
			if len(users) == 0 {
				return fmt.Errorf("no users yet, create one with: simchain user create <name>")
			}
			items := make([]ui.PickerItem, len(users))
			for i, u := range users {
				items[i] = ui.PickerItem{Label: u, Value: u, Current: u == sess.User}
			}
			if name, err = ui.PickItem("Log in as", items); err != nil {
				return err
			}
			if name == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}
		if err := simr.Users().Require(name); err != nil {
			return err
		}

		sess.Login(name)
		if ws, err := simr.Wallets().List(name); err == nil && len(ws) == 1 && sess.Wallet == "" {
			sess.Wallet = ws[0].Address
		}
		if err := sess.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Logged in as " + name))
		if sess.Wallet == "" {
			fmt.Println(ui.Hint("Pick a wallet with: simchain wallet use"))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the active user, wallet and chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sess.Clear(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Logged out."))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active user, wallet and chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		pairs := [][2]string{{"User", u}}

		if w, err := activeWallet(u); err == nil {
			bal, err := simr.Balances().Get(u, w.Address)
			if err != nil {
				return err
			}
			pairs = append(pairs,
				[2]string{"Wallet", w.Nickname},
				[2]string{"Address", w.Address},
				[2]string{"Balance", ui.USDC(bal)})
		} else {
			pairs = append(pairs, [2]string{"Wallet", "(none selected)"})
		}

		c, err := currentChain()
		if err != nil {
			return err
		}
		pairs = append(pairs, [2]string{"Chain", c.DisplayName})

		fmt.Println(ui.KeyValueBlock("Session", pairs))
		return nil
	},
}
