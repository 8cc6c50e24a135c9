package services

import (
	"strconv"
	"strings"

	"github.com/codyseavey/mtgssm/internal/models"
)

// CountAliases maps each count type to every column name it has been
// exported under over the years.
type CountAliases map[models.CountType][]string

// DefaultCountAliases returns the historical count column names: "copies"
// became "nonfoil" and "foils" became "foil".
func DefaultCountAliases() CountAliases {
	return CountAliases{
		models.CountNonfoil: {"nonfoil", "copies"},
		models.CountFoil:    {"foil", "foils"},
	}
}

// ExtractCounts sums every aliased column for each count type. Missing,
// blank and non-numeric values count as zero; negative values are summed
// like any other. Count types that sum to zero are omitted.
func (a CountAliases) ExtractCounts(fields map[string]string) map[models.CountType]int {
	counts := make(map[models.CountType]int, len(a))
	for countType, columns := range a {
		total := 0
		for _, column := range columns {
			total += parseCount(fields[column])
		}
		if total != 0 {
			counts[countType] = total
		}
	}
	return counts
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// LegacyCoercer converts rows of older collection formats into the current
// format by extracting counts and resolving the card through the matcher.
type LegacyCoercer struct {
	matcher      *LegacyMatcher
	countAliases CountAliases
}

// NewLegacyCoercer creates a coercer. A nil countAliases uses the defaults.
func NewLegacyCoercer(matcher *LegacyMatcher, countAliases CountAliases) *LegacyCoercer {
	if countAliases == nil {
		countAliases = DefaultCountAliases()
	}
	return &LegacyCoercer{
		matcher:      matcher,
		countAliases: countAliases,
	}
}

// Matcher returns the matcher used to resolve rows.
func (c *LegacyCoercer) Matcher() *LegacyMatcher {
	return c.matcher
}

// Coerce converts row into a CoercedRow. Rows without any nonzero count
// return nil without consulting the matcher, so stale identifying data on an
// empty row can never fail an import. Matcher failures are returned as is.
func (c *LegacyCoercer) Coerce(row models.LegacyRow) (*models.CoercedRow, error) {
	counts := c.countAliases.ExtractCounts(row.Fields)
	if len(counts) == 0 {
		return nil, nil
	}

	id, err := c.matcher.Resolve(row.Query())
	if err != nil {
		return nil, err
	}
	return &models.CoercedRow{CardID: id, Counts: counts}, nil
}
