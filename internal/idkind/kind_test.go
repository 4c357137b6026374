package idkind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/idbatch/internal/idkind"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCol   string
		wantWidth int
		wantField string
		wantErr   bool
	}{
		{name: "pidm", input: "pidm", wantCol: "PIDM", wantWidth: 7, wantField: "pidm"},
		{name: "whkey", input: "whkey", wantCol: "WHKEY", wantWidth: 9, wantField: "whkey"},
		{name: "pantherid", input: "pantherid", wantCol: "PANTHERID", wantWidth: 9, wantField: "pantherid"},
		{name: "upper case accepted", input: "PIDM", wantCol: "PIDM", wantWidth: 7, wantField: "pidm"},
		{name: "surrounding space accepted", input: " whkey ", wantCol: "WHKEY", wantWidth: 9, wantField: "whkey"},
		{name: "unknown", input: "ssn", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := idkind.Lookup(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, idkind.ErrUnsupportedKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, cfg.ColumnName)
			assert.Equal(t, tt.wantWidth, cfg.PadWidth)
			assert.Equal(t, tt.wantField, cfg.SQLField)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"pantherid", "pidm", "whkey"}, idkind.Names())
	assert.Len(t, idkind.All(), 3)
}

func TestOutputFileName(t *testing.T) {
	cfg, err := idkind.Lookup("whkey")
	require.NoError(t, err)
	assert.Equal(t, "whkey_output.txt", cfg.OutputFileName())
}

func TestLookup_ErrorListsChoices(t *testing.T) {
	_, err := idkind.Lookup("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pantherid, pidm, whkey")
}
