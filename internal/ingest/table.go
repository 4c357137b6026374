// Package ingest decodes identifier columns from CSV files and spreadsheets.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rshade/idbatch/internal/logging"
)

// Format is a supported tabular encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// spreadsheetExts are the workbook extensions excelize can open.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// FormatFromPath picks the decoder for path by its extension (case-insensitive).
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".csv":
		return FormatCSV, nil
	case spreadsheetExts[ext]:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (use .csv or .xlsx)", ErrUnsupportedFileFormat, filepath.Base(path))
	}
}

// RawIdentifier is one cell of the identifier column before normalization.
type RawIdentifier struct {
	// Row is the 1-based row number in the source, counting the header row.
	Row int

	// Value is the cell text as decoded.
	Value string

	// Present is false when the cell is empty or the row is too short.
	Present bool
}

// Options control how the identifier column is located.
type Options struct {
	// Column is the header name required when Header is true, e.g. "PIDM".
	Column string

	// Header reports whether the first row is a header row.
	Header bool

	// Sheet selects a worksheet by name; empty means the first sheet.
	// Ignored for CSV.
	Sheet string
}

// Load decodes the identifier column from the file at path.
func Load(ctx context.Context, path string, opts Options) ([]RawIdentifier, error) {
	log := logging.FromContext(ctx)

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("checking input file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	log.Debug().
		Str("component", "ingest").
		Str("path", path).
		Str("format", string(format)).
		Bool("header", opts.Header).
		Int64("size_bytes", info.Size()).
		Msg("loading identifier table")

	return LoadReader(ctx, f, format, opts)
}

// LoadReader decodes the identifier column from r using the given format.
func LoadReader(ctx context.Context, r io.Reader, format Format, opts Options) ([]RawIdentifier, error) {
	var (
		ids []RawIdentifier
		err error
	)
	switch format {
	case FormatCSV:
		ids, err = readCSV(ctx, r, opts)
	case FormatXLSX:
		ids, err = readSpreadsheet(ctx, r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileFormat, format)
	}
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("component", "ingest").
		Int("identifier_count", len(ids)).
		Msg("identifier table decoded")
	return ids, nil
}

// columnCollector turns decoded rows into RawIdentifiers. Both decoders feed
// it one row at a time so header handling stays identical.
//
// Blank rows before the header are skipped. After that, a blank row is a
// missing identifier. Spreadsheets set dropTrailingBlanks because excelize
// reports formatted but empty rows past the data; those are only counted
// once a non-blank row follows them.
type columnCollector struct {
	opts               Options
	dropTrailingBlanks bool
	index              int
	sawHeader          bool
	pendingBlanks      []int
	out                []RawIdentifier
}

func newColumnCollector(opts Options, dropTrailingBlanks bool) *columnCollector {
	return &columnCollector{opts: opts, dropTrailingBlanks: dropTrailingBlanks}
}

// add consumes the row at the given 1-based physical row number.
func (c *columnCollector) add(row int, cells []string) error {
	blank := isBlankRow(cells)

	if c.opts.Header && !c.sawHeader {
		if blank {
			return nil
		}
		c.sawHeader = true
		idx := headerIndex(cells, c.opts.Column)
		if idx < 0 {
			return fmt.Errorf("%w: column %q not in header %v", ErrMissingColumn, c.opts.Column, trimAll(cells))
		}
		c.index = idx
		return nil
	}

	if blank && c.dropTrailingBlanks {
		c.pendingBlanks = append(c.pendingBlanks, row)
		return nil
	}
	for _, r := range c.pendingBlanks {
		c.out = append(c.out, RawIdentifier{Row: r})
	}
	c.pendingBlanks = c.pendingBlanks[:0]

	raw := RawIdentifier{Row: row}
	if c.index < len(cells) {
		raw.Value = cells[c.index]
		raw.Present = strings.TrimSpace(raw.Value) != ""
	}
	c.out = append(c.out, raw)
	return nil
}

// finish reports a header-mode table that had no rows at all.
func (c *columnCollector) finish() ([]RawIdentifier, error) {
	if c.opts.Header && !c.sawHeader {
		return nil, fmt.Errorf("%w: column %q not found, table is empty", ErrMissingColumn, c.opts.Column)
	}
	return c.out, nil
}

// headerIndex finds column in the header. The match is case-sensitive.
func headerIndex(header []string, column string) int {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)) == column {
			return i
		}
	}
	return -1
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
