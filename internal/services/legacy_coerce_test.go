package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/codyseavey/mtgssm/internal/models"
)

// countingObserver counts how often the matcher was asked to search.
type countingObserver struct {
	NopObserver
	searches int
}

func (c *countingObserver) Searching(models.LegacyQuery) { c.searches++ }

func TestCountAliases_ExtractCounts(t *testing.T) {
	aliases := DefaultCountAliases()

	tests := []struct {
		name   string
		fields map[string]string
		want   map[models.CountType]int
	}{
		{
			name:   "current columns",
			fields: map[string]string{"nonfoil": "3", "foil": "7"},
			want:   map[models.CountType]int{models.CountNonfoil: 3, models.CountFoil: 7},
		},
		{
			name:   "legacy columns",
			fields: map[string]string{"copies": "2", "foils": "1"},
			want:   map[models.CountType]int{models.CountNonfoil: 2, models.CountFoil: 1},
		},
		{
			name:   "legacy alias with zero canonical column",
			fields: map[string]string{"copies": "4", "nonfoil": "0"},
			want:   map[models.CountType]int{models.CountNonfoil: 4},
		},
		{
			name:   "legacy alias with blank canonical column",
			fields: map[string]string{"foils": "5", "foil": ""},
			want:   map[models.CountType]int{models.CountFoil: 5},
		},
		{
			name:   "both spellings are summed",
			fields: map[string]string{"copies": "1", "nonfoil": "2"},
			want:   map[models.CountType]int{models.CountNonfoil: 3},
		},
		{
			name:   "malformed values count as zero",
			fields: map[string]string{"nonfoil": "two", "foil": "1.5", "copies": " 2 "},
			want:   map[models.CountType]int{models.CountNonfoil: 2},
		},
		{
			name:   "negative values are summed",
			fields: map[string]string{"nonfoil": "-3", "copies": "1", "foil": "1"},
			want:   map[models.CountType]int{models.CountNonfoil: -2, models.CountFoil: 1},
		},
		{
			name:   "negative value cancels its alias",
			fields: map[string]string{"copies": "2", "nonfoil": "-2"},
			want:   map[models.CountType]int{},
		},
		{
			name:   "nothing owned",
			fields: map[string]string{"nonfoil": "", "foil": "0"},
			want:   map[models.CountType]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aliases.ExtractCounts(tt.fields); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractCounts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLegacyCoercer_ZeroCountShortCircuit(t *testing.T) {
	obs := &countingObserver{}
	matcher := NewLegacyMatcher(NewCatalogIndex(promoCatalog()), nil, obs)
	coercer := NewLegacyCoercer(matcher, nil)

	// Identifying fields that could never resolve
	row := models.NewLegacyRow(map[string]string{
		"set":     "???",
		"name":    "Not A Card",
		"copies":  "0",
		"foils":   "",
		"nonfoil": "0",
	})

	got, err := coercer.Coerce(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected empty result, got %+v", got)
	}
	if obs.searches != 0 {
		t.Errorf("expected matcher not to be consulted, got %d searches", obs.searches)
	}
}

func TestLegacyCoercer_Coerce(t *testing.T) {
	matcher := NewLegacyMatcher(NewCatalogIndex(promoCatalog()), DefaultSetAliases(), NopObserver{})
	coercer := NewLegacyCoercer(matcher, DefaultCountAliases())

	row := models.NewLegacyRow(map[string]string{
		"set":          "HOP",
		"name":         "Stairs to Infinity",
		"number":       "P1",
		"multiverseid": "198073",
		"copies":       "3",
		"foils":        "7",
	})

	got, err := coercer.Coerce(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &models.CoercedRow{
		CardID: stairsID,
		Counts: map[models.CountType]int{models.CountNonfoil: 3, models.CountFoil: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLegacyCoercer_PropagatesMatchErrors(t *testing.T) {
	cards := []models.Card{
		{ID: testID(1), Name: "Black Lotus", SetCode: "lea"},
		{ID: testID(2), Name: "Black Lotus", SetCode: "lea"},
	}
	coercer := NewLegacyCoercer(NewLegacyMatcher(NewCatalogIndex(cards), nil, NopObserver{}), nil)

	tests := []struct {
		name   string
		fields map[string]string
		want   error
	}{
		{
			name:   "ambiguous",
			fields: map[string]string{"set": "LEA", "name": "Black Lotus", "copies": "1"},
			want:   ErrAmbiguousMatch,
		},
		{
			name:   "no match",
			fields: map[string]string{"set": "LEA", "name": "Mox Pearl", "foil": "1"},
			want:   ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coercer.Coerce(models.NewLegacyRow(tt.fields))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if got != nil {
				t.Errorf("expected no result on failure, got %+v", got)
			}
		})
	}
}
