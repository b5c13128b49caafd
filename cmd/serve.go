package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/api"
	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation over HTTP",
	Long: `Serve a JSON API over the same data directory the CLI uses. Stops
cleanly on Ctrl-C or SIGTERM, letting in-flight requests finish.

The listen address defaults to the configured listen_addr (127.0.0.1:8080).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		if !verbose {
			if err := logger.Init(logger.Options{Level: cfg.LogLevel}); err != nil {
				return fmt.Errorf("initialising logger: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println(ui.Banner())
		fmt.Println(ui.Info("Listening on http://" + addr))
		fmt.Println(ui.Meta("Data directory: " + cfg.DataDir))
		return api.New(simr, cfg.HistoryLimit).Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config listen_addr)")
}
