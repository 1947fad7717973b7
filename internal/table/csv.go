package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ExportCSV writes the full, unfiltered row collection. The header row comes
// from the column titles, hidden columns included, so identifiers stripped
// from the screen still make it into the file. Values are written raw, not
// display formatted, and quoting follows RFC 4180 so commas in values
// survive a round trip.
func (m *Model) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		header[i] = col.Title
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(m.Columns))
	for _, row := range m.rows {
		for i, col := range m.Columns {
			record[i] = RawValue(row.Cells[col.Key])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the download name for an export, the dataset hint
// plus the current date, "compartment_costs_2026-09-01.csv".
func ExportFilename(hint string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", hint, now.Format("2006-01-02"))
}

// ExportFile writes the CSV export into dir and returns the full path.
func (m *Model) ExportFile(dir, hint string) (string, error) {
	path := filepath.Join(dir, ExportFilename(hint, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := m.ExportCSV(f); err != nil {
		return "", err
	}
	return path, nil
}
