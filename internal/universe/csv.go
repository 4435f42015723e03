package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// CSVSupplier reads a universe from a local CSV file. The schema requires a
// "ticker" column; the display name is optional under "name" or its legacy
// "Navn" alias. Rows with a blank or duplicate ticker are dropped.
type CSVSupplier struct {
	path   string
	logger *logger.Logger
}

// NewCSVSupplier creates a supplier for the given file path.
func NewCSVSupplier(path string, log *logger.Logger) *CSVSupplier {
	return &CSVSupplier{path: path, logger: log}
}

// GetUniverse parses the file into universe entries.
func (s *CSVSupplier) GetUniverse(_ context.Context) ([]contracts.UniverseEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("universe file %s is empty", s.path)
	}

	tickerCol, nameCol := -1, -1
	for i, header := range records[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "ticker":
			tickerCol = i
		case "name", "navn":
			nameCol = i
		}
	}
	if tickerCol == -1 {
		return nil, fmt.Errorf("universe file %s has no ticker column", s.path)
	}

	seen := make(map[string]bool)
	entries := make([]contracts.UniverseEntry, 0, len(records)-1)
	for _, record := range records[1:] {
		if tickerCol >= len(record) {
			continue
		}
		ticker := strings.TrimSpace(record[tickerCol])
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		name := ""
		if nameCol != -1 && nameCol < len(record) {
			name = strings.TrimSpace(record[nameCol])
		}
		entries = append(entries, contracts.UniverseEntry{Ticker: ticker, Name: name})
	}

	s.logger.WithFields(map[string]interface{}{
		"path":    s.path,
		"entries": len(entries),
	}).Debug("Universe loaded from CSV")

	return entries, nil
}
