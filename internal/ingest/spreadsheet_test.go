package ingest_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rshade/idbatch/internal/ingest"
)

// writeWorkbook saves rows to the first sheet of a new workbook.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	if sheet != "" && sheet != "Sheet1" {
		require.NoError(t, wb.SetSheetName("Sheet1", sheet))
	} else {
		sheet = "Sheet1"
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ids.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func TestLoad_SpreadsheetNumericCells(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{{"PIDM"}, {1}, {22}, {333}})

	ids, err := ingest.Load(context.Background(), path, ingest.Options{Column: "PIDM", Header: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "22", "333"}, values(ids))
	assert.Equal(t, 2, ids[0].Row)
}

func TestLoad_SpreadsheetTextCells(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{{"000123456"}, {"42"}})

	ids, err := ingest.Load(context.Background(), path, ingest.Options{Column: "WHKEY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"000123456", "42"}, values(ids))
}

func TestLoad_SpreadsheetMissingColumn(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{{"ID"}, {1}})

	_, err := ingest.Load(context.Background(), path, ingest.Options{Column: "PANTHERID", Header: true})
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
}

func TestLoad_SpreadsheetNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Keys", [][]any{{"WHKEY"}, {7}})

	ids, err := ingest.Load(context.Background(), path, ingest.Options{Column: "WHKEY", Header: true, Sheet: "Keys"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, values(ids))

	_, err = ingest.Load(context.Background(), path, ingest.Options{Column: "WHKEY", Header: true, Sheet: "Other"})
	assert.ErrorIs(t, err, ingest.ErrMissingSheet)
}

func TestLoad_SpreadsheetCorrupt(t *testing.T) {
	path := writeFile(t, "ids.xlsx", "not a zip")
	_, err := ingest.Load(context.Background(), path, ingest.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening workbook")
}

func TestLoad_SpreadsheetBlankRows(t *testing.T) {
	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", 1))
	require.NoError(t, wb.SetCellValue("Sheet1", "A3", 3))
	// Formatted but empty rows past the data.
	require.NoError(t, wb.SetRowHeight("Sheet1", 4, 30))
	require.NoError(t, wb.SetRowHeight("Sheet1", 5, 30))
	path := filepath.Join(t.TempDir(), "ids.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	ids, err := ingest.Load(context.Background(), path, ingest.Options{})
	require.NoError(t, err)
	require.Len(t, ids, 3, "trailing empty rows are ignored")

	assert.Equal(t, 2, ids[1].Row)
	assert.False(t, ids[1].Present, "an empty row between values is a missing identifier")
	assert.Equal(t, "3", ids[2].Value)
}
