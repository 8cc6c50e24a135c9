package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codyseavey/mtgssm/internal/models"
)

// CSVHeader is the column order of current-format collection files.
var CSVHeader = []string{"set", "name", "collector_number", "scryfall_id", "nonfoil", "foil"}

// RowForCard builds a current-format row for a card. Zero counts are left out.
func RowForCard(card *models.Card, counts map[models.CountType]int) map[string]string {
	row := map[string]string{
		"set":              strings.ToUpper(card.SetCode),
		"name":             card.Name,
		"collector_number": card.CollectorNumber,
		"scryfall_id":      card.ID.String(),
	}
	for _, ct := range models.AllCountTypes() {
		if n := counts[ct]; n != 0 {
			row[string(ct)] = strconv.Itoa(n)
		}
	}
	return row
}

// RowsForCards returns rows for the collection in set then collector number
// order. Terse output only lists owned cards; verbose output lists every
// catalog card, leaving the counts of unowned ones blank.
func RowsForCards(index *CatalogIndex, counts models.CardCounts, verbose bool) []map[string]string {
	var rows []map[string]string
	for _, set := range index.SetCodes() {
		for _, card := range index.SetCards(set) {
			cardCounts := counts[card.ID]
			if !verbose && len(cardCounts) == 0 {
				continue
			}
			rows = append(rows, RowForCard(card, cardCounts))
		}
	}
	return rows
}

// CSVSerializer reads and writes collection files in the current CSV format.
type CSVSerializer struct {
	index   *CatalogIndex
	verbose bool
}

func NewCSVSerializer(index *CatalogIndex, verbose bool) *CSVSerializer {
	return &CSVSerializer{index: index, verbose: verbose}
}

// Write writes the header and one row per exported card.
func (s *CSVSerializer) Write(w io.Writer, counts models.CardCounts) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(CSVHeader))
	for _, row := range RowsForCards(s.index, counts, s.verbose) {
		for i, column := range CSVHeader {
			record[i] = row[column]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadRows parses a CSV collection file of any known vintage. Column names
// are taken from the header row; rows shorter than the header are padded.
func ReadRows(r io.Reader) ([]models.LegacyRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []models.LegacyRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				fields[column] = record[i]
			} else {
				fields[column] = ""
			}
		}
		row := models.NewLegacyRow(fields)
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}
