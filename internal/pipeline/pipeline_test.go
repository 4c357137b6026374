package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/idbatch/internal/formatter"
	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/ingest"
	"github.com/rshade/idbatch/internal/pipeline"
)

type dirs struct {
	uploads string
	outputs string
}

func newDirs(t *testing.T) dirs {
	t.Helper()
	root := t.TempDir()
	d := dirs{uploads: filepath.Join(root, "uploads"), outputs: filepath.Join(root, "outputs")}
	require.NoError(t, os.MkdirAll(d.uploads, 0o755))
	return d
}

func (d dirs) upload(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(d.uploads, name), []byte(content), 0o600))
}

func (d dirs) request(file, kind string) pipeline.Request {
	return pipeline.Request{File: file, Kind: kind, UploadsDir: d.uploads, OutputsDir: d.outputs}
}

func TestRun_WritesOutput(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "sample.csv", "1\n22\n333\n")

	res, err := pipeline.Run(context.Background(), d.request("sample.csv", "pidm"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(d.outputs, "pidm_output.txt"), res.OutputPath)
	assert.Equal(t, 3, res.Identifiers)
	assert.Equal(t, 1, res.Fragments)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "pidm IN ('0000001', '0000022', 0000333)", string(data))
}

func TestRun_MultipleBatchesJoinedWithNewline(t *testing.T) {
	d := newDirs(t)
	var sb strings.Builder
	for i := 1; i <= 1001; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte('\n')
	}
	d.upload(t, "keys.csv", sb.String())

	res, err := pipeline.Run(context.Background(), d.request("keys.csv", "whkey"))
	require.NoError(t, err)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "OR whkey IN (000001001)", lines[1])
	assert.False(t, strings.HasSuffix(string(data), "\n"))
}

func TestRun_EmptyInputWritesEmptyFile(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "empty.csv", "")

	res, err := pipeline.Run(context.Background(), d.request("empty.csv", "pantherid"))
	require.NoError(t, err)
	assert.Zero(t, res.Fragments)

	info, err := os.Stat(res.OutputPath)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestRun_MissingColumnLeavesExistingOutput(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "ids.csv", "ID\n1\n")
	require.NoError(t, os.MkdirAll(d.outputs, 0o755))
	existing := filepath.Join(d.outputs, "pantherid_output.txt")
	require.NoError(t, os.WriteFile(existing, []byte("previous"), 0o600))

	req := d.request("ids.csv", "pantherid")
	req.Header = true
	_, err := pipeline.Run(context.Background(), req)
	require.ErrorIs(t, err, ingest.ErrMissingColumn)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestRun_MissingColumnCreatesNothing(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "ids.csv", "ID\n1\n")

	req := d.request("ids.csv", "pantherid")
	req.Header = true
	_, err := pipeline.Run(context.Background(), req)
	require.ErrorIs(t, err, ingest.ErrMissingColumn)

	_, statErr := os.Stat(d.outputs)
	assert.True(t, os.IsNotExist(statErr), "outputs dir must not be created on failure")
}

func TestRun_Errors(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "ok.csv", "1\n")
	d.upload(t, "bad.csv", "1\n\n,x\nabc\n")
	d.upload(t, "ids.txt", "1\n")

	tests := []struct {
		name string
		req  pipeline.Request
		want error
	}{
		{name: "file not found", req: d.request("nope.csv", "pidm"), want: ingest.ErrFileNotFound},
		{name: "unsupported format", req: d.request("ids.txt", "pidm"), want: ingest.ErrUnsupportedFileFormat},
		{name: "invalid id type", req: d.request("ok.csv", "ssn"), want: idkind.ErrUnsupportedKind},
		{name: "invalid identifier", req: d.request("bad.csv", "pidm"), want: formatter.ErrInvalidIdentifier},
		{name: "bad style", req: func() pipeline.Request {
			r := d.request("ok.csv", "pidm")
			r.Style = "fancy"
			return r
		}(), want: formatter.ErrUnknownStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, statErr := os.Stat(d.outputs)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_DryRun(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "ids.csv", "7\n")

	req := d.request("ids.csv", "pidm")
	req.DryRun = true
	res, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pidm IN (0000007)", res.Payload)
	assert.Empty(t, res.OutputPath)

	_, statErr := os.Stat(d.outputs)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_LegacyStyleAndOutputName(t *testing.T) {
	d := newDirs(t)
	d.upload(t, "ids.csv", "1\n2\n")

	req := d.request("ids.csv", "whkey")
	req.Style = "legacy"
	req.OutputName = "custom.txt"
	res, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.outputs, "custom.txt"), res.OutputPath)
	assert.Equal(t, "OR k.whkey IN ('000000001', 000000002)", res.Payload)
}

func TestRequest_InputPath(t *testing.T) {
	r := pipeline.Request{File: "a.csv", UploadsDir: "uploads"}
	assert.Equal(t, filepath.Join("uploads", "a.csv"), r.InputPath())

	abs := filepath.Join(t.TempDir(), "a.csv")
	r.File = abs
	assert.Equal(t, abs, r.InputPath())
}

func TestRun_LogsBatchProgress(t *testing.T) {
	d := newDirs(t)
	var sb strings.Builder
	for i := 1; i <= 1500; i++ {
		sb.WriteString(strconv.Itoa(i) + "\n")
	}
	d.upload(t, "ids.csv", sb.String())

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	_, err := pipeline.Run(ctx, d.request("ids.csv", "pidm"))
	require.NoError(t, err)

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, `"message":"batch rendered"`))
	assert.Equal(t, 1, strings.Count(out, `"message":"all batches rendered"`))
	assert.Contains(t, out, `"identifiers":1500`)
}
