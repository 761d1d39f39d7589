package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Default column names of the tabular sources.
const (
	DefaultKeyColumn  = "driver"
	DefaultTeamColumn = "team_2026"
	DefaultNameColumn = "driver_name"
)

// ReadTable reads a CSV with a header row and builds a Table from the key and
// value columns. Repeated keys keep their first position and take the last
// value seen. Rows with an empty key or value are skipped.
func ReadTable(r io.Reader, keyColumn, valueColumn string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: missing header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	keyIdx, valIdx := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch col {
		case keyColumn:
			keyIdx = i
		case valueColumn:
			valIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, fmt.Errorf("missing column %q", keyColumn)
	}
	if valIdx < 0 {
		return nil, fmt.Errorf("missing column %q", valueColumn)
	}

	t := NewTable()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		key := strings.TrimSpace(rec[keyIdx])
		val := strings.TrimSpace(rec[valIdx])
		if key == "" || val == "" {
			continue
		}
		t.Set(key, val)
	}
	return t, nil
}
