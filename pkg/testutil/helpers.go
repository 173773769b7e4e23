// Package testutil provides common utility functions for testing.
package testutil

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/iwvelando/sacracalc/internal/projection"
)

// FindProfile finds a currency profile by code, ignoring case.
// Returns a pointer to the profile if found, nil otherwise.
func FindProfile(profiles []projection.CurrencyProfile, code string) *projection.CurrencyProfile {
	for i := range profiles {
		if strings.EqualFold(profiles[i].Code, code) {
			return &profiles[i]
		}
	}
	return nil
}

// CSVRecord maps the header of a two-line quoted CSV document onto its data
// row.
func CSVRecord(document string) (map[string]string, error) {
	rows, err := csv.NewReader(strings.NewReader(document)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) != 2 {
		return nil, fmt.Errorf("expected header and one row, got %d rows", len(rows))
	}

	record := make(map[string]string, len(rows[0]))
	for i, name := range rows[0] {
		record[name] = rows[1][i]
	}
	return record, nil
}
