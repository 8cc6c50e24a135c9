package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/models"
)

// RowError reports a row that could not be imported.
type RowError struct {
	Line int
	Row  models.LegacyRow
	Err  error
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Counts   models.CardCounts `json:"-"`
	Rows     int               `json:"rows"`
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"` // Rows without any nonzero count
	Failures []*RowError       `json:"-"`
}

// ImportService turns rows read from collection files into card counts.
// Rows carrying a known scryfall_id are taken as is; everything else goes
// through legacy coercion.
type ImportService struct {
	coercer *LegacyCoercer
	workers int
}

// NewImportService creates an import service that coerces up to workers
// rows concurrently. The catalog index is immutable so rows are independent.
func NewImportService(coercer *LegacyCoercer, workers int) *ImportService {
	if workers <= 0 {
		workers = 1
	}
	return &ImportService{
		coercer: coercer,
		workers: workers,
	}
}

// CoerceRow converts one row of any supported format. It returns nil for
// rows with nothing to import.
func (s *ImportService) CoerceRow(row models.LegacyRow) (*models.CoercedRow, error) {
	rawID := strings.TrimSpace(row.Fields["scryfall_id"])
	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err == nil && s.coercer.Matcher().Index().Card(id) != nil {
			counts := s.coercer.countAliases.ExtractCounts(row.Fields)
			if len(counts) == 0 {
				return nil, nil
			}
			return &models.CoercedRow{CardID: id, Counts: counts}, nil
		}
	}
	return s.coercer.Coerce(row)
}

// CoerceRows coerces every row and returns the results in input order.
//
// In strict mode the first failing row (by position) is returned as the
// error and no results are produced. In lenient mode failures are collected
// and the remaining rows are still processed.
func (s *ImportService) CoerceRows(ctx context.Context, rows []models.LegacyRow, lenient bool) ([]*models.CoercedRow, []*RowError, error) {
	results := make([]*models.CoercedRow, len(rows))
	rowErrs := make([]*RowError, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range rows {
		// Rows are launched in order, so every row before a failing one has
		// been started and will finish.
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy; go directive is below 1.22
		g.Go(func() error {
			rec, err := s.CoerceRow(rows[i])
			if err != nil {
				rowErrs[i] = &RowError{Line: rows[i].Line, Row: rows[i], Err: err}
				if lenient {
					return nil
				}
				return rowErrs[i]
			}
			results[i] = rec
			return nil
		})
	}
	waitErr := g.Wait()

	var failures []*RowError
	for _, rowErr := range rowErrs {
		if rowErr != nil {
			failures = append(failures, rowErr)
		}
	}
	if !lenient && len(failures) > 0 {
		return nil, nil, failures[0]
	}
	if waitErr != nil {
		return nil, nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, failures, nil
}

// Import coerces rows and accumulates them into card counts, summing rows
// that resolve to the same card.
func (s *ImportService) Import(ctx context.Context, rows []models.LegacyRow, lenient bool) (*ImportResult, error) {
	start := time.Now()
	defer func() {
		metrics.ImportDuration.Observe(time.Since(start).Seconds())
	}()

	coerced, failures, err := s.CoerceRows(ctx, rows, lenient)
	if err != nil {
		metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &ImportResult{
		Counts:   make(models.CardCounts),
		Rows:     len(rows),
		Failures: failures,
	}
	for _, rec := range coerced {
		if rec == nil {
			result.Skipped++
			continue
		}
		result.Counts.Add(rec.CardID, rec.Counts)
		result.Imported++
	}
	// Failed rows have no coerced record either
	result.Skipped -= len(failures)

	metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(result.Imported))
	metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
	metrics.ImportRowsTotal.WithLabelValues("failed").Add(float64(len(failures)))

	log.Printf("[Import] %d rows: %d imported, %d skipped, %d failed",
		result.Rows, result.Imported, result.Skipped, len(failures))
	for _, f := range failures {
		log.Printf("[Import] %v", f)
	}
	return result, nil
}
