package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "ssm",
		Short:         "Manage a Magic: The Gathering collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "Path to the collection database (overrides DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "Path to the Scryfall bulk data file (overrides CATALOG_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.aliasesPath, "aliases", "", "Path to a TOML set alias table (overrides SET_ALIASES_PATH)")
	rootCmd.PersistentFlags().IntVar(&flags.workers, "workers", 0, "Number of rows resolved concurrently (overrides IMPORT_WORKERS)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose-log", "v", false, "Log every legacy card lookup")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newFetchCatalogCommand(ctx))

	return rootCmd
}
