package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet]",
	Short: "Show the USDC balance of the active wallet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && walletFlag == "" {
			walletFlag = args[0]
		}
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		bal, err := simr.Balances().Get(a.User, w.Address)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Balance", [][2]string{
			{"User", a.User},
			{"Wallet", w.Nickname},
			{"Address", w.Address},
			{"Balance", ui.USDC(bal)},
		}))
		return nil
	},
}

var onRampCmd = &cobra.Command{
	Use:   "onramp [amount]",
	Short: "Deposit play-money USDC into the active wallet",
	Long: `Deposit USDC into the active wallet. The amount defaults to the
configured onramp_amount (500 unless changed with: simchain config set onramp_amount 1000).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := decimal.NewFromFloat(cfg.OnRampAmount)
		if len(args) == 1 {
			var err error
			if amount, err = parseAmount(args[0]); err != nil {
				return err
			}
		}
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		rec, err := simr.OnRamp(a, amount)
		if err != nil {
			return err
		}
		return printBalanceAfter(a, w.Nickname, fmt.Sprintf("On-ramped %s into %s", ui.USDC(rec.Amount), w.Nickname), rec.Hash)
	},
}

var offRampCmd = &cobra.Command{
	Use:   "offramp <amount>",
	Short: "Withdraw USDC from the active wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		rec, err := simr.OffRamp(a, amount)
		if err != nil {
			return err
		}
		return printBalanceAfter(a, w.Nickname, fmt.Sprintf("Off-ramped %s from %s", ui.USDC(rec.Amount), w.Nickname), rec.Hash)
	},
}

// printBalanceAfter reports a completed action and the wallet's new balance.
func printBalanceAfter(a sim.Actor, nickname, msg, hash string) error {
	bal, err := simr.Balances().Get(a.User, a.Wallet)
	if err != nil {
		return err
	}
	fmt.Println(ui.Success(msg))
	fmt.Printf("  %s %s\n", ui.Meta("tx:     "), ui.Addr(hash))
	fmt.Printf("  %s %s\n", ui.Meta("balance:"), ui.Val(ui.USDC(bal)+" ("+nickname+")"))
	return nil
}
