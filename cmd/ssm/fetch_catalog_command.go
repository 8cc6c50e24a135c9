package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyseavey/mtgssm/internal/services"
)

func newFetchCatalogCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "fetch-catalog",
		Short: "Download the Scryfall bulk card data used to resolve legacy rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scryfall, err := ctx.scryfall()
			if err != nil {
				return err
			}
			dest := ctx.config.CatalogPath
			if err := scryfall.DownloadBulkData(cmd.Context(), kind, dest); err != nil {
				return err
			}

			// Make sure what landed on disk is usable
			cards, err := scryfall.LoadCatalog(dest)
			if err != nil {
				return err
			}
			index := services.NewCatalogIndex(cards)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d cards from %d sets to %s\n", index.Len(), len(index.SetCodes()), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", services.DefaultBulkDataKind, "Bulk data type to download")
	return cmd
}
