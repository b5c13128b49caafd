package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Simulate smart-contract calls",
}

var contractCallCmd = &cobra.Command{
	Use:   "call [simple|medium|complex]",
	Short: "Pay the gas of a simulated contract call",
	Long: `Charge the active wallet the gas of a contract call of the given
complexity (base fee × the chain's multiplier) and record it.

Without an argument a picker shows the fee of each tier on the active chain.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(chain.Simple), string(chain.Medium), string(chain.Complex)},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		c, err := currentChain()
		if err != nil {
			return err
		}

		var level chain.Complexity
		if len(args) == 1 {
			level = chain.ParseComplexity(args[0])
		} else {
			var items []ui.PickerItem
			for _, f := range chain.FeeSchedule(c) {
				items = append(items, ui.PickerItem{
					Label:    f.Level.Label(),
					SubLabel: chain.FormatUSD(f.Fee),
					Value:    string(f.Level),
				})
			}
			v, err := ui.PickItem("Contract call on "+c.DisplayName, items)
			if err != nil {
				return err
			}
			if v == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			level = chain.Complexity(v)
		}

		rec, err := simr.ContractCall(a, level)
		if err != nil {
			return err
		}
		return printBalanceAfter(a, w.Nickname, rec.Action, rec.Hash)
	},
}

var contractFeesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Show contract call fees on the active chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		printFeeSchedule(c)
		return nil
	},
}

func printFeeSchedule(c *chain.Chain) {
	t := ui.NewTable([]ui.Column{
		{Title: "Call", Width: 40},
		{Title: "Multiplier", Width: 10},
		{Title: "Fee", Width: 10},
	})
	for _, f := range chain.FeeSchedule(c) {
		t.AddRow(ui.Row{f.Level.Label(), "×" + f.Multiplier.String(), chain.FormatUSD(f.Fee)})
	}
	fmt.Printf("%s  %s\n\n", ui.StyleTitle.Render("Contract fees"), ui.Meta("("+c.DisplayName+", base "+chain.FormatUSD(c.GasFee)+")"))
	fmt.Println(t.Render())
}

func init() {
	contractCmd.AddCommand(contractCallCmd, contractFeesCmd)
}
