package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var dashboardInterval time.Duration

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live view of the active wallet",
	Long: `Show the active wallet's balance, NFTs and recent transactions,
refreshing on an interval so actions from another terminal (or the HTTP
API) show up. Press r to refresh now, q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		c, err := currentChain()
		if err != nil {
			return err
		}
		fetch := func() (*ui.Snapshot, error) {
			bal, err := simr.Balances().Get(a.User, w.Address)
			if err != nil {
				return nil, err
			}
			owned, err := simr.NFTs().ListByOwner(a.User, w.Address)
			if err != nil {
				return nil, err
			}
			listed := 0
			for _, n := range owned {
				if _, ok, err := simr.Market().Get(n.TokenID); err == nil && ok {
					listed++
				}
			}
			rs, err := simr.Ledger().Load(a.User)
			if err != nil {
				return nil, err
			}
			return &ui.Snapshot{
				User:     a.User,
				Nickname: w.Nickname,
				Address:  w.Address,
				Chain:    c.DisplayName,
				Balance:  bal,
				NFTs:     len(owned),
				Listed:   listed,
				Recent:   ledger.Latest(ledger.ForWallet(rs, w.Address), 8),
			}, nil
		}
		_, err = ui.NewDashboard(dashboardInterval, fetch).Run()
		return err
	},
}

func init() {
	dashboardCmd.Flags().DurationVar(&dashboardInterval, "interval", 2*time.Second, "refresh interval")
}
