package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/market"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var marketMine bool

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "List NFTs for sale",
	Long: `The marketplace only advertises NFTs. There is no buy operation: a
sale is an NFT transfer plus a USDC send agreed between users.`,
}

var marketListCmd = &cobra.Command{
	Use:   "list <token-id> <price>",
	Short: "List an NFT of the active wallet for sale",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := activeActor()
		if err != nil {
			return err
		}
		n, err := findToken(args[0])
		if err != nil {
			return err
		}
		price, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		l, err := simr.ListForSale(a, n.TokenID, price)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Listed %q for %s on %s", n.Name, ui.USDC(l.Price), l.Chain)))
		return nil
	},
}

var marketDelistCmd = &cobra.Command{
	Use:   "delist <token-id>",
	Short: "Withdraw one of your listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := activeUser()
		if err != nil {
			return err
		}
		tokenID := args[0]
		if n, err := findToken(tokenID); err == nil {
			tokenID = n.TokenID
		}
		removed, err := simr.Delist(sim.Actor{User: u}, tokenID)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println(ui.Info("That token is not listed."))
			return nil
		}
		fmt.Println(ui.Success("Listing withdrawn."))
		return nil
	},
}

var marketShowCmd = &cobra.Command{
	Use:   "show <token-id>",
	Short: "Show a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := findToken(args[0])
		if err != nil {
			return err
		}
		l, ok, err := simr.Market().Get(n.TokenID)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(ui.Info(fmt.Sprintf("%q is not listed.", n.Name)))
			return nil
		}
		fmt.Println(ui.KeyValueBlock(n.Name, [][2]string{
			{"Token", l.TokenID},
			{"Price", ui.USDC(l.Price)},
			{"Seller", l.SellerUser + " " + l.SellerAddress},
			{"Chain", l.Chain},
			{"Listed", l.ListedAt.Local().Format("2006-01-02 15:04")},
		}))
		return nil
	},
}

var marketLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Browse the marketplace",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			ls  []market.Listing
			err error
		)
		if marketMine {
			u, uerr := activeUser()
			if uerr != nil {
				return uerr
			}
			ls, err = simr.Market().ByUser(u)
		} else {
			ls, err = simr.Market().All()
		}
		if err != nil {
			return err
		}
		if len(ls) == 0 {
			fmt.Println(ui.Info("Nothing is listed."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Token", Width: 12},
			{Title: "Name", Width: 24},
			{Title: "Price", Width: 14},
			{Title: "Seller", Width: 16},
			{Title: "Chain", Width: 10},
		})
		for _, l := range ls {
			name := ""
			if n, err := simr.NFTs().Get(l.TokenID); err == nil {
				name = n.Name
			}
			t.AddRow(ui.Row{ui.ShortID(l.TokenID), name, ui.USDC(l.Price), l.SellerUser, l.Chain})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	marketLsCmd.Flags().BoolVar(&marketMine, "mine", false, "only the active user's listings")
	marketCmd.AddCommand(marketListCmd, marketDelistCmd, marketShowCmd, marketLsCmd)
}
