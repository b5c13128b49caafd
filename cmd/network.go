package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage simulated chains",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured chains and their gas fees",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := currentChain()
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3},
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 16},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 8},
			{Title: "Gas", Width: 8},
			{Title: "Active", Width: 6},
		})
		all := simr.Chains().All()
		for i, c := range all {
			chainID := fmt.Sprintf("%d", c.ChainID)
			if c.ChainID == 0 {
				chainID = "-"
			}
			active := ""
			if c.Name == current.Name {
				active = "✓"
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", i+1),
				c.Name,
				c.DisplayName,
				chainID,
				c.NativeCurrency,
				chain.FormatUSD(c.GasFee),
				active,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d chains total", len(all))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use [chain]",
	Short: "Set the chain for this session",
	Long: `Set the chain for this session by name or numeric chain ID.

Examples:
  simchain network use polygon
  simchain network use 137`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			current, err := currentChain()
			if err != nil {
				return err
			}
			var items []ui.PickerItem
			for _, c := range simr.Chains().All() {
				items = append(items, ui.PickerItem{
					Label:    c.DisplayName,
					SubLabel: "gas " + chain.FormatUSD(c.GasFee),
					Value:    c.Name,
					Current:  c.Name == current.Name,
				})
			}
			if name, err = ui.PickItem("Chain", items); err != nil {
				return err
			}
			if name == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}
		c, err := simr.Chains().Lookup(name)
		if err != nil {
			return fmt.Errorf("%w: run `simchain network list` to see all chains", err)
		}
		sess.Chain = c.Name
		if err := sess.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Active chain set to %s", ui.ChainName(c.DisplayName))))
		return nil
	},
}

var networkFeesCmd = &cobra.Command{
	Use:   "fees [chain]",
	Short: "Compare contract call fees across chains",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			c, err := simr.Chains().Lookup(args[0])
			if err != nil {
				return err
			}
			printFeeSchedule(c)
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Chain", Width: 16},
			{Title: "Base", Width: 8},
			{Title: "Simple", Width: 8},
			{Title: "Medium", Width: 8},
			{Title: "Complex", Width: 8},
		})
		for _, c := range simr.Chains().All() {
			row := ui.Row{c.DisplayName, chain.FormatUSD(c.GasFee)}
			for _, f := range chain.FeeSchedule(&c) {
				row = append(row, chain.FormatUSD(f.Fee))
			}
			t.AddRow(row)
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkFeesCmd)
}
