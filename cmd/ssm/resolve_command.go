package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codyseavey/mtgssm/internal/models"
	"github.com/codyseavey/mtgssm/internal/services"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var q models.LegacyQuery

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up the catalog card a legacy row refers to",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Name = strings.TrimSpace(q.Name)
			if q.Name == "" {
				return errors.New("--name is required")
			}

			matcher, err := ctx.legacyMatcher()
			if err != nil {
				return err
			}
			index := matcher.Index()

			out := cmd.OutOrStdout()
			id, err := matcher.Resolve(q)
			if err != nil {
				var matchErr *services.MatchError
				if errors.As(err, &matchErr) && len(matchErr.Candidates) > 0 {
					fmt.Fprintln(out, renderCards(index, matchErr.Candidates))
				}
				return err
			}
			fmt.Fprintln(out, renderCards(index, []uuid.UUID{id}))
			return nil
		},
	}

	cmd.Flags().StringVar(&q.SetCode, "set", "", "Set code as written in the legacy file")
	cmd.Flags().StringVar(&q.Name, "name", "", "Card name")
	cmd.Flags().StringVar(&q.CollectorNumber, "number", "", "Collector number")
	cmd.Flags().IntVar(&q.MultiverseID, "mvid", 0, "Multiverse id")
	cmd.Flags().StringVar(&q.Artist, "artist", "", "Artist")
	return cmd
}

func renderCards(index *services.CatalogIndex, ids []uuid.UUID) string {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		card := index.Card(id)
		if card == nil {
			continue
		}
		rows = append(rows, []string{
			strings.ToUpper(card.SetCode),
			card.CollectorNumber,
			card.Name,
			card.Artist,
			id.String(),
		})
	}
	return renderTable(
		[]string{"Set", "Number", "Name", "Artist", "Scryfall ID"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}
