package ingest

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"
)

// readSpreadsheet decodes the selected worksheet. Cells are read as their raw
// stored values so numeric identifiers are not passed through number formats.
func readSpreadsheet(ctx context.Context, r io.Reader, opts Options) ([]RawIdentifier, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheet, err := pickSheet(wb, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheet, err)
	}
	defer rows.Close()

	collector := newColumnCollector(opts, true)
	row := 0
	for rows.Next() {
		row++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading worksheet %q: %w", sheet, err)
		}
		if err := collector.add(row, cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheet, err)
	}

	return collector.finish()
}

func pickSheet(wb *excelize.File, name string) (string, error) {
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrMissingSheet)
	}
	if name == "" {
		return sheets[0], nil
	}
	if !slices.Contains(sheets, name) {
		return "", fmt.Errorf("%w: %q (available: %v)", ErrMissingSheet, name, sheets)
	}
	return name, nil
}
