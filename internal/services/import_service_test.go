package services

import (
	"context"
	"errors"
	"testing"

	"github.com/codyseavey/mtgssm/internal/models"
)

func newTestImportService(workers int) *ImportService {
	cards := append(promoCatalog(),
		models.Card{ID: testID(1), Name: "Black Lotus", SetCode: "lea"},
		models.Card{ID: testID(2), Name: "Black Lotus", SetCode: "lea"},
	)
	matcher := NewLegacyMatcher(NewCatalogIndex(cards), DefaultSetAliases(), NopObserver{})
	return NewImportService(NewLegacyCoercer(matcher, nil), workers)
}

func row(line int, fields map[string]string) models.LegacyRow {
	r := models.NewLegacyRow(fields)
	r.Line = line
	return r
}

func TestImportService_CoerceRow_CurrentFormat(t *testing.T) {
	s := newTestImportService(1)

	// A known scryfall_id is trusted even if the other columns disagree
	got, err := s.CoerceRow(row(2, map[string]string{
		"set":         "XXX",
		"name":        "Wrong Name",
		"scryfall_id": tazeemID.String(),
		"nonfoil":     "2",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.CardID != tazeemID || got.Counts[models.CountNonfoil] != 2 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestImportService_CoerceRow_UnknownIDFallsBack(t *testing.T) {
	s := newTestImportService(1)

	got, err := s.CoerceRow(row(2, map[string]string{
		"set":         "PHOP",
		"name":        "Tazeem",
		"number":      "41",
		"scryfall_id": testID(999).String(),
		"foil":        "1",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.CardID != tazeemID {
		t.Errorf("expected legacy resolution to Tazeem, got %+v", got)
	}
}

func TestImportService_Import(t *testing.T) {
	rows := []models.LegacyRow{
		row(2, map[string]string{"set": "HOP", "name": "Stairs to Infinity", "number": "P1", "copies": "1"}),
		row(3, map[string]string{"set": "LEA", "name": "Black Lotus", "copies": "1"}),
		row(4, map[string]string{"set": "PHOP", "name": "Stairs to Infinity", "multiverseid": "198073", "foils": "2"}),
		row(5, map[string]string{"set": "LEA", "name": "Nope", "copies": "0"}),
		row(6, map[string]string{"set": "LEA", "name": "Mox Pearl", "copies": "1"}),
		row(7, map[string]string{"set": "PMBS", "name": "Black Sun's Zenith", "artist": "Daarken", "copies": "4"}),
	}

	t.Run("strict stops at the first failing row", func(t *testing.T) {
		for _, workers := range []int{1, 4} {
			_, err := newTestImportService(workers).Import(context.Background(), rows, false)
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("workers=%d: expected *RowError, got %v", workers, err)
			}
			if rowErr.Line != 3 {
				t.Errorf("workers=%d: expected failure on line 3, got %d", workers, rowErr.Line)
			}
			if !errors.Is(err, ErrAmbiguousMatch) {
				t.Errorf("workers=%d: expected ErrAmbiguousMatch, got %v", workers, err)
			}
		}
	})

	t.Run("lenient collects failures", func(t *testing.T) {
		result, err := newTestImportService(3).Import(context.Background(), rows, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Rows != 6 || result.Imported != 3 || result.Skipped != 1 {
			t.Errorf("expected 6 rows, 3 imported, 1 skipped, got %d, %d, %d", result.Rows, result.Imported, result.Skipped)
		}
		if len(result.Failures) != 2 {
			t.Fatalf("expected 2 failures, got %d", len(result.Failures))
		}
		if result.Failures[0].Line != 3 || !errors.Is(result.Failures[0], ErrAmbiguousMatch) {
			t.Errorf("unexpected first failure %v", result.Failures[0])
		}
		if result.Failures[1].Line != 6 || !errors.Is(result.Failures[1], ErrNoMatch) {
			t.Errorf("unexpected second failure %v", result.Failures[1])
		}

		// Rows resolving to the same card are summed
		stairs := result.Counts[stairsID]
		if stairs[models.CountNonfoil] != 1 || stairs[models.CountFoil] != 2 {
			t.Errorf("unexpected Stairs to Infinity counts %v", stairs)
		}
		if result.Counts[zenithID][models.CountNonfoil] != 4 {
			t.Errorf("unexpected Black Sun's Zenith counts %v", result.Counts[zenithID])
		}
		if result.Counts.Total() != 7 {
			t.Errorf("expected 7 cards, got %d", result.Counts.Total())
		}
	})
}

func TestImportService_CoerceRowsPreservesOrder(t *testing.T) {
	var rows []models.LegacyRow
	want := []string{}
	for i := 0; i < 30; i++ {
		switch i % 3 {
		case 0:
			rows = append(rows, row(i+2, map[string]string{"set": "phop", "name": "Tazeem", "number": "41", "copies": "1"}))
			want = append(want, tazeemID.String())
		case 1:
			rows = append(rows, row(i+2, map[string]string{"set": "pmbs", "name": "Black Sun's Zenith", "number": "39", "copies": "1"}))
			want = append(want, zenithID.String())
		default:
			rows = append(rows, row(i+2, map[string]string{"set": "phop", "name": "Stairs to Infinity", "number": "P1", "copies": "1"}))
			want = append(want, stairsID.String())
		}
	}

	results, failures, err := newTestImportService(8).CoerceRows(context.Background(), rows, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
	for i, rec := range results {
		if rec == nil || rec.CardID.String() != want[i] {
			t.Fatalf("row %d: expected %s, got %+v", i, want[i], rec)
		}
	}
}

func TestImportService_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []models.LegacyRow{row(2, map[string]string{"set": "phop", "name": "Tazeem", "number": "41", "copies": "1"})}
	if _, err := newTestImportService(1).Import(ctx, rows, true); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
