package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"migration-reconciliation/internal/domain"
)

// ReadXLSXRecords reads the first sheet of a workbook with the same layout rules as CSV.
func ReadXLSXRecords(ctx context.Context, path string) ([]domain.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to read header from %s: sheet %q is empty", path, sheets[0])
	}

	cols, err := newColumnLayout(rows[0])
	if err != nil {
		return nil, fmt.Errorf("invalid header in %s: %w", path, err)
	}

	var records []domain.Record
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlankRow(row) {
			continue
		}
		rec, err := cols.record(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
