package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LegacyRow is one row of collection data in an unknown or older format.
// The identifying columns are lifted into fields; Fields keeps every raw
// column so count columns can be read under any historical spelling.
type LegacyRow struct {
	Line            int               `json:"line,omitempty"`
	SetCode         string            `json:"set"`
	Name            string            `json:"name"`
	CollectorNumber string            `json:"number"`
	MultiverseID    string            `json:"multiverseid"`
	Artist          string            `json:"artist"`
	Fields          map[string]string `json:"fields"`
}

// NewLegacyRow builds a LegacyRow from a raw column->value mapping.
// Older exports call the collector number column "number", newer ones
// "collector_number"; the former wins when both are populated.
func NewLegacyRow(fields map[string]string) LegacyRow {
	number := strings.TrimSpace(fields["number"])
	if number == "" {
		number = strings.TrimSpace(fields["collector_number"])
	}
	return LegacyRow{
		SetCode:         strings.TrimSpace(fields["set"]),
		Name:            strings.TrimSpace(fields["name"]),
		CollectorNumber: number,
		MultiverseID:    strings.TrimSpace(fields["multiverseid"]),
		Artist:          strings.TrimSpace(fields["artist"]),
		Fields:          fields,
	}
}

// Query returns the identifying fields of the row in matcher form.
func (r LegacyRow) Query() LegacyQuery {
	return LegacyQuery{
		SetCode:         r.SetCode,
		Name:            r.Name,
		CollectorNumber: r.CollectorNumber,
		MultiverseID:    ParseMultiverseID(r.MultiverseID),
		Artist:          r.Artist,
	}
}

// LegacyQuery holds the identifying information used to look up a card.
// Zero values mean "absent".
type LegacyQuery struct {
	SetCode         string `json:"set"`
	Name            string `json:"name"`
	CollectorNumber string `json:"number"`
	MultiverseID    int    `json:"multiverseid"`
	Artist          string `json:"artist"`
}

// ParseMultiverseID parses a multiverse id column. Blank, non-numeric and
// non-positive values are all treated as absent.
func ParseMultiverseID(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// CoercedRow is a legacy row converted to the current format.
type CoercedRow struct {
	CardID uuid.UUID         `json:"scryfall_id"`
	Counts map[CountType]int `json:"counts"`
}
