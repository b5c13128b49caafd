package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var (
	sendToUser   string
	sendToWallet string
	sendYes      bool
)

var sendCmd = &cobra.Command{
	Use:   "send <amount>",
	Short: "Send USDC to another wallet",
	Long: `Send USDC from the active wallet. The sender also pays the chain's base
gas fee, which is burned.

Without --to-user / --to-wallet an interactive picker lists every other wallet.

Examples:
  simchain send 100 --to-user bob
  simchain send 25.5 --to-user bob --to-wallet savings --chain polygon`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		a, w, err := activeActor()
		if err != nil {
			return err
		}
		c, err := currentChain()
		if err != nil {
			return err
		}
		toUser, toAddr, err := pickRecipient(a, sendToUser, sendToWallet)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Transfer", [][2]string{
			{"From", a.User + " / " + w.Nickname},
			{"To", toUser + " / " + ui.TruncateAddr(toAddr)},
			{"Amount", ui.USDC(amount)},
			{"Gas", chain.FormatUSD(c.GasFee) + " on " + c.DisplayName},
		}))
		if !sendYes && !ui.Confirm("Send?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		rec, err := simr.Send(a, toUser, toAddr, amount)
		if err != nil {
			return err
		}
		return printBalanceAfter(a, w.Nickname,
			fmt.Sprintf("Sent %s to %s (gas %s)", ui.USDC(rec.Amount), toUser, chain.FormatUSD(rec.GasFee)), rec.Hash)
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendToUser, "to-user", "", "recipient user")
	sendCmd.Flags().StringVar(&sendToWallet, "to-wallet", "", "recipient wallet (address, nickname or prefix)")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip confirmation")
}
