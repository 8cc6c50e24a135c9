package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codyseavey/mtgssm/internal/services"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the collection as CSV (use - for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher, err := ctx.legacyMatcher()
			if err != nil {
				return err
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			counts, err := services.NewCollectionService(db).Load(cmd.Context())
			if err != nil {
				return err
			}

			serializer := services.NewCSVSerializer(matcher.Index(), verbose)
			if args[0] == "-" {
				return serializer.Write(cmd.OutOrStdout(), counts)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := serializer.Write(f, counts); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d cards to %s\n", counts.Total(), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Also list every unowned catalog card")
	return cmd
}
