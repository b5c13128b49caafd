package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var (
	txsLimit       int
	txsAllWallets  bool
	txsInteractive bool
)

var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "Show transaction history",
	Long: `Show the active wallet's transactions, newest first. --all-wallets
shows the whole user's history. --interactive opens a browsable view where
Enter shows every field and c copies the hash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		rs, err := simr.Ledger().Load(u)
		if err != nil {
			return err
		}

		scope := u
		if !txsAllWallets {
			w, err := activeWallet(u)
			if err != nil {
				return err
			}
			rs = ledger.ForWallet(rs, w.Address)
			scope = u + " / " + w.Nickname
		}

		limit := txsLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.HistoryLimit
		}
		total := len(rs)
		rs = ledger.Latest(rs, limit)

		title := fmt.Sprintf("%s  %s", ui.StyleTitle.Render("Transactions"), ui.Meta(fmt.Sprintf("(%s, %d of %d)", scope, len(rs), total)))
		if txsInteractive {
			return ui.RunHistory(title, rs)
		}
		if len(rs) == 0 {
			fmt.Println(ui.Meta("No transactions yet."))
			return nil
		}
		fmt.Println(title)
		fmt.Println()
		fmt.Println(ui.HistoryTable(rs).Render())
		return nil
	},
}

func init() {
	txsCmd.Flags().IntVarP(&txsLimit, "limit", "n", 25, "number of transactions to show, 0 for all (default: config history_limit)")
	txsCmd.Flags().BoolVar(&txsAllWallets, "all-wallets", false, "include every wallet of the user")
	txsCmd.Flags().BoolVarP(&txsInteractive, "interactive", "i", false, "browse interactively")
}
