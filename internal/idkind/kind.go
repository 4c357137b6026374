// Package idkind holds the table of supported identifier kinds and the
// per-kind parameters the formatter needs to render them.
package idkind

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedKind indicates an identifier kind outside the known table.
var ErrUnsupportedKind = errors.New("unsupported identifier kind")

// Kind names an identifier kind, e.g. "pidm".
type Kind string

// Known identifier kinds.
const (
	PIDM      Kind = "pidm"
	WHKey     Kind = "whkey"
	PantherID Kind = "pantherid"
)

// Config describes how one identifier kind is read and rendered.
type Config struct {
	// Kind is the lower-case kind name, also used for the output file name.
	Kind Kind `json:"kind" yaml:"kind"`

	// ColumnName is the header expected in the source table.
	ColumnName string `json:"column" yaml:"column"`

	// PadWidth is the zero-padded width of a normalized identifier.
	PadWidth int `json:"pad_width" yaml:"pad_width"`

	// SQLField is the field name rendered in the IN predicate.
	SQLField string `json:"sql_field" yaml:"sql_field"`
}

//nolint:gochecknoglobals // Fixed lookup table.
var table = map[Kind]Config{
	PIDM:      {Kind: PIDM, ColumnName: "PIDM", PadWidth: 7, SQLField: "pidm"},
	WHKey:     {Kind: WHKey, ColumnName: "WHKEY", PadWidth: 9, SQLField: "whkey"},
	PantherID: {Kind: PantherID, ColumnName: "PANTHERID", PadWidth: 9, SQLField: "pantherid"},
}

// Lookup returns the configuration for the named kind.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) (Config, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	cfg, ok := table[k]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q (choose from %s)", ErrUnsupportedKind, name, strings.Join(Names(), ", "))
	}
	return cfg, nil
}

// All returns every known kind configuration sorted by name.
func All() []Config {
	out := make([]Config, 0, len(table))
	for _, cfg := range table {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Names returns the sorted list of kind names.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, cfg := range all {
		names[i] = string(cfg.Kind)
	}
	return names
}

// OutputFileName returns the default output file name for the kind.
func (c Config) OutputFileName() string {
	return string(c.Kind) + "_output.txt"
}
