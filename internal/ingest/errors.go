package ingest

import "errors"

// Sentinel errors for tabular input handling. Compare with errors.Is.
var (
	// ErrFileNotFound indicates the input path does not exist.
	ErrFileNotFound = errors.New("input file not found")

	// ErrUnsupportedFileFormat indicates an extension that is neither CSV nor a spreadsheet.
	ErrUnsupportedFileFormat = errors.New("unsupported file format")

	// ErrMissingColumn indicates the expected column is absent from the header row.
	ErrMissingColumn = errors.New("expected column not found")

	// ErrMissingSheet indicates the requested worksheet does not exist in the workbook.
	ErrMissingSheet = errors.New("worksheet not found")
)
