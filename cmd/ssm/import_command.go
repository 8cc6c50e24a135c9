package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codyseavey/mtgssm/internal/services"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var lenient bool
	var dryRun bool
	var replace bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a collection CSV in the current or a legacy format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lenient") {
				lenient = ctx.config.ImportLenient
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open collection: %w", err)
			}
			defer f.Close()

			rows, err := services.ReadRows(f)
			if err != nil {
				return err
			}

			importer, err := ctx.importService()
			if err != nil {
				return err
			}
			result, err := importer.Import(cmd.Context(), rows, lenient)
			if err != nil {
				return describeImportError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Rows", "Imported", "Skipped", "Failed", "Cards"},
				[][]string{{
					strconv.Itoa(result.Rows),
					strconv.Itoa(result.Imported),
					strconv.Itoa(result.Skipped),
					strconv.Itoa(len(result.Failures)),
					strconv.Itoa(result.Counts.Total()),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			if len(result.Failures) > 0 {
				fmt.Fprintln(out, renderFailures(result.Failures))
			}

			if dryRun {
				fmt.Fprintln(out, "Dry run: collection not modified")
				return nil
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			collection := services.NewCollectionService(db)
			if replace {
				err = collection.Replace(cmd.Context(), result.Counts)
			} else {
				err = collection.Merge(cmd.Context(), result.Counts)
			}
			if err != nil {
				return err
			}

			stats, err := collection.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Collection now holds %d cards (%d unique)\n", stats.TotalCards, stats.UniqueCards)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "Report unresolved rows instead of aborting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve rows without writing the collection")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the stored collection instead of adding to it")
	return cmd
}

func renderFailures(failures []*services.RowError) string {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		result := "error"
		var matchErr *services.MatchError
		switch {
		case errors.Is(f.Err, services.ErrAmbiguousMatch):
			result = "ambiguous"
		case errors.Is(f.Err, services.ErrNoMatch):
			result = "no match"
		}
		candidates := ""
		if errors.As(f.Err, &matchErr) {
			candidates = strconv.Itoa(len(matchErr.Candidates))
		}
		rows = append(rows, []string{
			strconv.Itoa(f.Line),
			f.Row.SetCode,
			f.Row.Name,
			f.Row.CollectorNumber,
			result,
			candidates,
		})
	}
	return renderTable(
		[]string{"Line", "Set", "Name", "Number", "Result", "Candidates"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

// describeImportError adds a hint to strict-mode resolution failures.
func describeImportError(err error) error {
	var rowErr *services.RowError
	if !errors.As(err, &rowErr) {
		return err
	}
	if errors.Is(err, services.ErrAmbiguousMatch) || errors.Is(err, services.ErrNoMatch) {
		return fmt.Errorf("%w\nfix the row or rerun with --lenient to skip unresolved rows", err)
	}
	return err
}
