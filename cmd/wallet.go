package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/ui"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

var (
	walletKeyFlag    string
	walletYesFlag    bool
	walletRevealFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the active user's wallets",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create [nickname]",
	Short: "Generate a new wallet",
	Long: `Generate a fresh secp256k1 keypair for the active user.

The key is never used to sign anything; it only makes the wallet look real.
With key_storage=keychain the key goes to the OS keychain instead of
wallets.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		nickname := ""
		if len(args) == 1 {
			nickname = args[0]
		} else {
			nickname = ui.PromptInput("Nickname", "")
		}

		var w *wallet.Wallet
		if walletKeyFlag != "" {
			w, err = simr.Wallets().Import(u, nickname, walletKeyFlag)
		} else {
			w, err = simr.Wallets().Create(u, nickname)
		}
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %s created: %s", ui.Val(w.Nickname), ui.Addr(w.Address))))

		if u == sess.User && sess.Wallet == "" {
			sess.Wallet = w.Address
			if err := sess.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Hint("It is now your active wallet."))
		} else {
			fmt.Println(ui.Hint("Switch to it with: simchain wallet use " + w.Nickname))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active user's wallets with balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		ws, err := simr.Wallets().List(u)
		if err != nil {
			return err
		}
		if len(ws) == 0 {
			fmt.Println(ui.Info(u + " has no wallets yet."))
			fmt.Println(ui.Hint("Create one with: simchain wallet create main"))
			return nil
		}
		bals, err := simr.Balances().All(u)
		if err != nil {
			return err
		}

		current := ""
		if u == sess.User {
			current = sess.Wallet
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Nickname", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "USDC", Width: 14},
			{Title: "Active", Width: 6},
		})
		for _, w := range ws {
			active := ""
			if w.Address == current {
				active = "✓"
			}
			t.AddRow(ui.Row{w.Nickname, w.Address, bals[w.Address].StringFixed(2), active})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s)", len(ws))))
		return nil
	},
}

var walletAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every wallet of every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := simr.Wallets().ListAll()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(ui.Info("No wallets yet."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "User", Width: 16},
			{Title: "Nickname", Width: 16},
			{Title: "Address", Width: 44},
		})
		for _, e := range entries {
			t.AddRow(ui.Row{e.User, e.Nickname, e.Address})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [wallet]",
	Short: "Set the active wallet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := sess.RequireUser()
		if err != nil {
			return err
		}
		var address string
		if len(args) == 1 {
			w, err := simr.Wallets().Resolve(u, args[0])
			if err != nil {
				return err
			}
			address = w.Address
		} else {
			ws, err := simr.Wallets().List(u)
			if err != nil {
				return err
			}
			if address, err = ui.PickItem("Active wallet", walletItems(ws, sess.Wallet)); err != nil {
				return err
			}
			if address == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}
		sess.Wallet = address
		if err := sess.Save(); err != nil {
			return err
		}
		w, err := simr.Wallets().Get(u, address)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Active wallet: %s", wallet.Label(w.Nickname, w.Address))))
		return nil
	},
}

var walletRenameCmd = &cobra.Command{
	Use:   "rename <wallet> <nickname>",
	Short: "Change a wallet's nickname",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		w, err := simr.Wallets().Resolve(u, args[0])
		if err != nil {
			return err
		}
		if err := simr.Wallets().Rename(u, w.Address, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Renamed %s to %q.", ui.TruncateAddr(w.Address), args[1])))
		return nil
	},
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete <wallet>",
	Short: "Delete a wallet",
	Long: `Delete a wallet and its stored key. Its balance entry and history stay
on disk. NFTs it owns keep pointing at the deleted address.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		w, err := simr.Wallets().Resolve(u, args[0])
		if err != nil {
			return err
		}
		if !walletYesFlag && !ui.ConfirmDanger(fmt.Sprintf("Delete wallet %s?", wallet.Label(w.Nickname, w.Address))) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := simr.Wallets().Delete(u, w.Address); err != nil {
			return err
		}
		if u == sess.User && sess.Wallet == w.Address {
			sess.Wallet = ""
			if err := sess.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q deleted.", w.Nickname)))
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show [wallet]",
	Short: "Show a wallet's details",
	Long: `Show address, balance, NFTs and history count of a wallet (the active
one by default). --reveal prints the private key after you retype the
wallet's nickname.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		var w *wallet.Wallet
		if len(args) == 1 {
			w, err = simr.Wallets().Resolve(u, args[0])
		} else {
			w, err = activeWallet(u)
		}
		if err != nil {
			return err
		}

		bal, err := simr.Balances().Get(u, w.Address)
		if err != nil {
			return err
		}
		owned, err := simr.NFTs().ListByOwner(u, w.Address)
		if err != nil {
			return err
		}
		history, err := simr.Ledger().Load(u)
		if err != nil {
			return err
		}
		storage := "wallets.json"
		if w.KeyRef != "" {
			storage = "OS keychain"
		}
		fmt.Println(ui.KeyValueBlock(w.Nickname, [][2]string{
			{"Owner", u},
			{"Address", w.Address},
			{"Balance", ui.USDC(bal)},
			{"NFTs", fmt.Sprintf("%d", len(owned))},
			{"Transactions", fmt.Sprintf("%d", len(ledger.ForWallet(history, w.Address)))},
			{"Created", createdLabel(w)},
			{"Key stored in", storage},
		}))

		if !walletRevealFlag {
			return nil
		}
		fmt.Println()
		fmt.Println(ui.Warn("You are about to reveal a private key."))
		if ui.PromptInput(fmt.Sprintf("Type %q to confirm", w.Nickname), "") != w.Nickname {
			fmt.Println(ui.Err("Nickname mismatch, not revealing."))
			return nil
		}
		key, err := simr.Wallets().PrivateKey(u, w.Address)
		if err != nil {
			return err
		}
		fmt.Println(ui.DangerBox("PRIVATE KEY (simulation only, never fund it)\n\n" + key))
		return nil
	},
}

func init() {
	walletCreateCmd.Flags().StringVar(&walletKeyFlag, "key", "", "import this hex private key instead of generating one")
	walletDeleteCmd.Flags().BoolVarP(&walletYesFlag, "yes", "y", false, "skip confirmation")
	walletShowCmd.Flags().BoolVar(&walletRevealFlag, "reveal", false, "print the private key")

	walletCmd.AddCommand(
		walletCreateCmd,
		walletListCmd,
		walletAllCmd,
		walletUseCmd,
		walletRenameCmd,
		walletDeleteCmd,
		walletShowCmd,
	)
}

func createdLabel(w *wallet.Wallet) string {
	if w.CreatedAt.IsZero() {
		return "-"
	}
	return w.CreatedAt.Local().Format("2006-01-02 15:04")
}
