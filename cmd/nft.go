package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/nft"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var (
	nftMintName string
	nftMintDesc string
	nftListAll  bool
	nftToUser   string
	nftToWallet string
	nftBridgeTo string
	nftYes      bool
)

var nftCmd = &cobra.Command{
	Use:   "nft",
	Short: "Mint, transfer and burn simulated NFTs",
}

var nftCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the assets that can be minted",
	RunE: func(cmd *cobra.Command, args []string) error {
		assets, err := simr.Catalog().Load()
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			fmt.Println(ui.Info("The portfolio catalog is empty."))
			fmt.Println(ui.Hint("Import one with: simchain catalog import <file-or-url>"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Asset", Width: 14},
			{Title: "Title", Width: 28},
			{Title: "Description", Width: 40},
		})
		for _, a := range assets {
			t.AddRow(ui.Row{a.AssetID, a.Title, a.Description})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var nftMintCmd = &cobra.Command{
	Use:   "mint [asset-id]",
	Short: "Mint an NFT from a catalog asset",
	Long: `Mint an NFT into the active wallet. Minting costs a complex contract
call on the active chain. --name and --description override the catalog's.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		assetID := ""
		if len(args) == 1 {
			assetID = args[0]
		} else {
			assets, err := simr.Catalog().Load()
			if err != nil {
				return err
			}
			items := make([]ui.PickerItem, len(assets))
			for i, as := range assets {
				items[i] = ui.PickerItem{Label: as.Title, SubLabel: as.AssetID, Value: as.AssetID}
			}
			if assetID, err = ui.PickItem("Mint from catalog", items); err != nil {
				return err
			}
			if assetID == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}

		minted, rec, err := simr.Mint(a, sim.MintRequest{AssetID: assetID, Name: nftMintName, Description: nftMintDesc})
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Minted %q on %s (gas %s)", minted.Name, minted.Chain, chain.FormatUSD(rec.GasFee))
		if err := printBalanceAfter(a, w.Nickname, msg, rec.Hash); err != nil {
			return err
		}
		fmt.Printf("  %s %s\n", ui.Meta("token:  "), ui.Val(minted.TokenID))
		return nil
	},
}

var nftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List NFTs owned by the active wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			owned []nft.NFT
			title string
		)
		if nftListAll {
			all, err := simr.NFTs().All()
			if err != nil {
				return err
			}
			owned, title = all, "All NFTs"
		} else {
			a, w, err := activeActor()
			if err != nil {
				return err
			}
			if owned, err = simr.NFTs().ListByOwner(a.User, w.Address); err != nil {
				return err
			}
			title = "NFTs of " + a.User + " / " + w.Nickname
		}
		if len(owned) == 0 {
			fmt.Println(ui.Info("No NFTs."))
			fmt.Println(ui.Hint("Mint one with: simchain nft mint"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Token", Width: 12},
			{Title: "Name", Width: 24},
			{Title: "Chain", Width: 10},
			{Title: "Owner", Width: 24},
			{Title: "Listed", Width: 10},
		})
		for _, n := range owned {
			listed := ""
			if l, ok, err := simr.Market().Get(n.TokenID); err == nil && ok {
				listed = l.Price.StringFixed(2)
			}
			t.AddRow(ui.Row{
				ui.ShortID(n.TokenID),
				n.Name,
				n.Chain,
				n.OwnerUser + " " + ui.TruncateAddr(n.OwnerAddress),
				listed,
			})
		}
		fmt.Println(ui.StyleTitle.Render(title))
		fmt.Println(t.Render())
		return nil
	},
}

var nftShowCmd = &cobra.Command{
	Use:   "show <token-id>",
	Short: "Show an NFT and its provenance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := findToken(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(n.Name, [][2]string{
			{"Token", n.TokenID},
			{"Asset", n.AssetID},
			{"Chain", n.Chain},
			{"Owner", n.OwnerUser + " " + n.OwnerAddress},
			{"Minted", n.MintedAt.Local().Format("2006-01-02 15:04")},
			{"Image", n.ImageURL},
			{"Description", n.Description},
		}))

		t := ui.NewTable([]ui.Column{
			{Title: "When", Width: 16},
			{Title: "Event", Width: 9},
			{Title: "Chain", Width: 10},
			{Title: "Details", Width: 44},
		})
		for _, ev := range n.History {
			detail := ev.User + " " + ui.TruncateAddr(ev.Address)
			if ev.Kind == nft.EventTransfer {
				detail = ev.FromUser + " → " + ev.ToUser + " " + ui.TruncateAddr(ev.ToAddress)
			}
			t.AddRow(ui.Row{ev.Timestamp.Local().Format("2006-01-02 15:04"), string(ev.Kind), ev.Chain, detail})
		}
		fmt.Println()
		fmt.Println(ui.StyleHeader.Render("History"))
		fmt.Println(t.Render())
		return nil
	},
}

var nftTransferCmd = &cobra.Command{
	Use:   "transfer <token-id>",
	Short: "Give an NFT to another wallet, optionally bridging it",
	Long: `Transfer an NFT owned by the active wallet. Costs a medium contract
call. --bridge moves the token to another chain at the same time. Any
marketplace listing of the token is withdrawn.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		n, err := findToken(args[0])
		if err != nil {
			return err
		}
		toUser, toAddr, err := pickRecipient(a, nftToUser, nftToWallet)
		if err != nil {
			return err
		}
		moved, rec, err := simr.TransferNFT(a, n.TokenID, toUser, toAddr, nftBridgeTo)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Transferred %q to %s", moved.Name, toUser)
		if rec.BridgeTo != "" {
			msg += " on " + rec.BridgeTo
		}
		return printBalanceAfter(a, w.Nickname, msg, rec.Hash)
	},
}

var nftBurnCmd = &cobra.Command{
	Use:   "burn <token-id>",
	Short: "Destroy an NFT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		n, err := findToken(args[0])
		if err != nil {
			return err
		}
		if !nftYes && !ui.ConfirmDanger(fmt.Sprintf("Burn %q? This cannot be undone.", n.Name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		rec, err := simr.Burn(a, n.TokenID)
		if err != nil {
			return err
		}
		return printBalanceAfter(a, w.Nickname, fmt.Sprintf("Burned %q", n.Name), rec.Hash)
	},
}

// findToken looks up a token by full id or a unique prefix of at least
// four characters.
func findToken(ref string) (*nft.NFT, error) {
	if n, err := simr.NFTs().Get(ref); err == nil {
		return n, nil
	}
	if len(ref) < 4 {
		return nil, fmt.Errorf("%w: %s", nft.ErrNotFound, ref)
	}
	all, err := simr.NFTs().All()
	if err != nil {
		return nil, err
	}
	var match *nft.NFT
	for i := range all {
		if len(all[i].TokenID) >= len(ref) && all[i].TokenID[:len(ref)] == ref {
			if match != nil {
				return nil, fmt.Errorf("token prefix %q is ambiguous", ref)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", nft.ErrNotFound, ref)
	}
	return match, nil
}

func init() {
	nftMintCmd.Flags().StringVar(&nftMintName, "name", "", "override the asset title")
	nftMintCmd.Flags().StringVar(&nftMintDesc, "description", "", "override the asset description")
	nftListCmd.Flags().BoolVar(&nftListAll, "all", false, "list every NFT of every user")
	nftTransferCmd.Flags().StringVar(&nftToUser, "to-user", "", "recipient user")
	nftTransferCmd.Flags().StringVar(&nftToWallet, "to-wallet", "", "recipient wallet")
	nftTransferCmd.Flags().StringVar(&nftBridgeTo, "bridge", "", "move the token to this chain")
	nftBurnCmd.Flags().BoolVarP(&nftYes, "yes", "y", false, "skip confirmation")

	nftCmd.AddCommand(nftCatalogCmd, nftMintCmd, nftListCmd, nftShowCmd, nftTransferCmd, nftBurnCmd)
}
