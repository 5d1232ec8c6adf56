package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"migration-reconciliation/internal/domain"
)

// ReadCSVRecords reads a CSV extract. The header row names the fields and must
// contain an "id" column; column order becomes field order.
func ReadCSVRecords(ctx context.Context, path string) ([]domain.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	cols, err := newColumnLayout(header)
	if err != nil {
		return nil, fmt.Errorf("invalid header in %s: %w", path, err)
	}

	var records []domain.Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}
		rec, err := cols.record(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// columnLayout maps a header row onto record fields.
type columnLayout struct {
	names []string
	idCol int
}

func newColumnLayout(header []string) (columnLayout, error) {
	layout := columnLayout{idCol: -1}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			return columnLayout{}, fmt.Errorf("column %d has no name", i+1)
		}
		if seen[name] {
			return columnLayout{}, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		if name == domain.IDField {
			layout.idCol = i
		}
		layout.names = append(layout.names, name)
	}
	if layout.idCol < 0 {
		return columnLayout{}, fmt.Errorf("missing %q column", domain.IDField)
	}
	return layout, nil
}

func (c columnLayout) record(row []string) (domain.Record, error) {
	if c.idCol >= len(row) || strings.TrimSpace(row[c.idCol]) == "" {
		return domain.Record{}, fmt.Errorf("row has no %s", domain.IDField)
	}

	rec := domain.Record{ID: strings.TrimSpace(row[c.idCol])}
	for i, name := range c.names {
		if i == c.idCol {
			continue
		}
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		rec.Fields = append(rec.Fields, domain.F(name, parseCell(cell)))
	}
	return rec, nil
}

// parseCell types a raw cell: blank is absent, anything that parses as a
// float is a number, everything else is text.
func parseCell(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Absent()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.Number(f)
	}
	return domain.Text(s)
}
