package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/config"
	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/session"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/simchain/cmd.Version=1.2.3" .
var Version = "0.3.0"

var (
	homeDir    string
	verbose    bool
	chainFlag  string
	userFlag   string
	walletFlag string

	cfg  *config.Config
	sess *session.Session
	simr *sim.Simulator
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "simchain",
	Short: "A simulated wallet, USDC and NFT playground",
	Long: `simchain: a terminal dashboard for a toy blockchain world.

  Create users and wallets, on-ramp play-money USDC, send it around,
  mint NFTs from a portfolio catalog, list them on a marketplace and
  see what contract calls would cost on each configured chain.

Nothing touches a real network. All state lives in JSON files under
the data directory (default ~/.simchain/data, see: simchain config list).

--user, --wallet and --chain override the logged-in session for a single
invocation.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// setup loads config, logging, the session and the simulator.
func setup() error {
	var err error
	cfg, err = config.Load(homeDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOpts := logger.Options{Level: "warn"}
	if verbose {
		logOpts = logger.Options{Level: "debug", Development: true}
	}
	if err := logger.Init(logOpts); err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}

	chains, err := chain.Load(cfg.ChainsFile)
	if err != nil {
		return err
	}
	if cfg.DefaultChain != "" {
		if _, err := chains.Lookup(cfg.DefaultChain); err != nil {
			return fmt.Errorf("config default_chain: %w", err)
		}
	}

	sess, err = session.Load(cfg.Dir())
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	opts := sim.Options{DataDir: cfg.DataDir, Chains: chains}
	if cfg.KeyStorage == config.KeyStorageKeychain {
		opts.Keystore = wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keys"))
	}
	simr = sim.New(opts)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "config directory (default: $"+config.HomeEnv+" or ~/.simchain)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&chainFlag, "chain", "", "chain to act on (default: session, then config)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "act as this user instead of the logged-in one")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet address, nickname or address prefix")

	rootCmd.AddCommand(
		userCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		walletCmd,
		balanceCmd,
		onRampCmd,
		offRampCmd,
		sendCmd,
		contractCmd,
		networkCmd,
		nftCmd,
		catalogCmd,
		marketCmd,
		txsCmd,
		configCmd,
		serveCmd,
		dashboardCmd,
	)
}
