package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/simchain/internal/ui"
)

var catalogTimeout time.Duration

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the portfolio catalog NFTs are minted from",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file-or-url>",
	Short: "Replace the catalog with a JSON file or URL",
	Long: `Replace portfolio_catalog.json with the assets from a local JSON file
or an http(s) URL. The document is a list of objects with asset_id, title,
image_url, description and tags. Existing NFTs are not touched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		spin := ui.NewSpinner("Importing catalog from " + args[0] + "...")
		spin.Start()
		n, err := simr.Catalog().Import(ctx, args[0])
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Imported %d asset(s) into %s", n, simr.Catalog().Path())))
		fmt.Println(ui.Hint("Mint one with: simchain nft mint"))
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().DurationVar(&catalogTimeout, "timeout", 30*time.Second, "give up on a URL after this long")
	catalogCmd.AddCommand(catalogImportCmd)
}
