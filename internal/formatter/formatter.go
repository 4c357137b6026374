// Package formatter renders identifier columns as batches of SQL IN
// predicates. One parametrized routine serves every identifier kind; the
// per-kind differences live in idkind.Config.
package formatter

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/idbatch/internal/engine/batch"
	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/ingest"
)

// Style selects one of the two historical output conventions.
type Style string

const (
	// StyleStandard renders "<field> IN (...)" for the first batch and
	// "OR <field> IN (...)" for every later batch.
	StyleStandard Style = "standard"

	// StyleLegacy renders "OR <qualifier>.<field> IN (...)" for every batch,
	// including the first.
	StyleLegacy Style = "legacy"
)

// isLegacy reports whether s names StyleLegacy, in any case or spacing.
func (s Style) isLegacy() bool {
	parsed, err := ParseStyle(string(s))
	return err == nil && parsed == StyleLegacy
}

// DefaultQualifier is the table alias used by StyleLegacy.
const DefaultQualifier = "k"

// ParseStyle maps a style name to a Style. Empty means StyleStandard.
func ParseStyle(name string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(name))) {
	case "", StyleStandard:
		return StyleStandard, nil
	case StyleLegacy:
		return StyleLegacy, nil
	default:
		return "", fmt.Errorf("%w: %q (choose standard or legacy)", ErrUnknownStyle, name)
	}
}

// Options tune rendering. The zero value renders the standard style in
// batches of 1000.
type Options struct {
	Style     Style
	Qualifier string
	BatchSize int

	// OnProgress, when set, is called after each batch is rendered.
	OnProgress batch.ProgressCallback
}

func (o Options) withDefaults() Options {
	if o.Style == "" {
		o.Style = StyleStandard
	}
	if o.Qualifier == "" {
		o.Qualifier = DefaultQualifier
	}
	if o.BatchSize == 0 {
		o.BatchSize = batch.DefaultBatchSize
	}
	return o
}

// Format normalizes ids for kind, splits them into batches and renders one
// SQL fragment per batch, in source order. Empty input yields no fragments.
// If any identifier fails normalization the whole call fails with an
// *InvalidIdentifierError naming every offending row.
func Format(ids []ingest.RawIdentifier, kind idkind.Config, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	style, err := ParseStyle(string(opts.Style))
	if err != nil {
		return nil, err
	}
	opts.Style = style

	normalized, err := NormalizeAll(ids, kind.PadWidth)
	if err != nil {
		return nil, err
	}

	proc, err := batch.NewProcessor[string](opts.BatchSize)
	if err != nil {
		return nil, err
	}
	proc.WithProgressCallback(opts.OnProgress)

	fragments := make([]string, 0, proc.TotalBatches(len(normalized)))
	err = proc.Process(context.Background(), normalized, func(_ context.Context, b []string, idx int) error {
		fragments = append(fragments, RenderBatch(b, idx, kind.SQLField, opts))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

// NormalizeAll normalizes every identifier, collecting all failures.
func NormalizeAll(ids []ingest.RawIdentifier, width int) ([]string, error) {
	out := make([]string, len(ids))
	var bad []int
	for i, id := range ids {
		if !id.Present {
			bad = append(bad, id.Row)
			continue
		}
		v, err := Normalize(id.Value, width)
		if err != nil {
			bad = append(bad, id.Row)
			continue
		}
		out[i] = v
	}
	if len(bad) > 0 {
		return nil, &InvalidIdentifierError{Rows: bad}
	}
	return out, nil
}

// RenderBatch renders one batch at position idx.
//
// Known oddity: the last element of every batch is written without quotes,
// so a batch of ["1", "2"] becomes "'1', 2". Downstream queries were built
// against this exact text, so it is reproduced rather than corrected.
func RenderBatch(values []string, idx int, field string, opts Options) string {
	opts = opts.withDefaults()

	var sb strings.Builder
	switch {
	case opts.Style.isLegacy():
		sb.WriteString("OR ")
		sb.WriteString(opts.Qualifier)
		sb.WriteByte('.')
	case idx > 0:
		sb.WriteString("OR ")
	}
	sb.WriteString(field)
	sb.WriteString(" IN (")

	last := len(values) - 1
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i == last {
			sb.WriteString(v)
			continue
		}
		sb.WriteByte('\'')
		sb.WriteString(v)
		sb.WriteByte('\'')
	}
	sb.WriteByte(')')
	return sb.String()
}

// Assemble joins fragments with newlines. There is no trailing newline.
func Assemble(fragments []string) string {
	return strings.Join(fragments, "\n")
}
