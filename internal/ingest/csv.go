package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// utf8BOM is written by spreadsheet tools at the start of CSV exports.
const utf8BOM = "\ufeff"

func readCSV(ctx context.Context, r io.Reader, opts Options) ([]RawIdentifier, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	collector := newColumnCollector(opts, false)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if err := collector.add(line, record); err != nil {
			return nil, err
		}
	}

	return collector.finish()
}
