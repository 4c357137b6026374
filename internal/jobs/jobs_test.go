package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/ingest"
	"github.com/rshade/idbatch/internal/jobs"
	"github.com/rshade/idbatch/internal/pipeline"
)

func setup(t *testing.T, files map[string]string) pipeline.Request {
	t.Helper()
	root := t.TempDir()
	uploads := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(uploads, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(uploads, name), []byte(content), 0o600))
	}
	return pipeline.Request{UploadsDir: uploads, OutputsDir: filepath.Join(root, "outputs")}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
jobs:
  - file: a.csv
    idtype: pidm
    header: true
  - file: b.xlsx
    idtype: whkey
    style: legacy
    output: keys.txt
`)
	m, err := jobs.LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Jobs, 2)
	require.NotNil(t, m.Jobs[0].Header)
	assert.True(t, *m.Jobs[0].Header)
	assert.Nil(t, m.Jobs[1].Header)
	assert.Equal(t, "keys.txt", m.Jobs[1].Output)
}

func TestLoadManifest_Errors(t *testing.T) {
	_, err := jobs.LoadManifest(writeManifest(t, "jobs: []\n"))
	assert.ErrorIs(t, err, jobs.ErrEmptyManifest)

	_, err = jobs.LoadManifest(writeManifest(t, "jobs: [unclosed"))
	assert.Error(t, err)

	_, err = jobs.LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_AllSucceed(t *testing.T) {
	defaults := setup(t, map[string]string{
		"p.csv": "PIDM\n1\n2\n",
		"w.csv": "3\n",
		"x.csv": "4\n",
	})
	yes := true
	m := &jobs.Manifest{Jobs: []jobs.Job{
		{File: "p.csv", IDType: "pidm", Header: &yes},
		{File: "w.csv", IDType: "whkey"},
		{File: "x.csv", IDType: "pantherid", Style: "legacy"},
	}}

	outcomes, err := jobs.Run(context.Background(), m, defaults, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "pidm IN ('0000001', 0000002)", outcomes[0].Result.Payload)
	assert.Equal(t, "whkey IN (000000003)", outcomes[1].Result.Payload)
	assert.Equal(t, "OR k.pantherid IN (000000004)", outcomes[2].Result.Payload)

	for _, o := range outcomes {
		_, statErr := os.Stat(o.Result.OutputPath)
		assert.NoError(t, statErr)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	defaults := setup(t, map[string]string{"ok.csv": "1\n", "bad.csv": "ID\n1\n"})
	yes := true
	m := &jobs.Manifest{Jobs: []jobs.Job{
		{File: "ok.csv", IDType: "pidm"},
		{File: "bad.csv", IDType: "whkey", Header: &yes},
		{File: "gone.csv", IDType: "pantherid"},
	}}

	outcomes, err := jobs.Run(context.Background(), m, defaults, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
	assert.ErrorIs(t, err, ingest.ErrFileNotFound)
	assert.Contains(t, err.Error(), "job 2 (bad.csv)")

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.NotNil(t, outcomes[0].Result)
	assert.Error(t, outcomes[1].Err)
	assert.Error(t, outcomes[2].Err)
}

func TestRun_DuplicateOutputRejected(t *testing.T) {
	defaults := setup(t, map[string]string{"a.csv": "1\n", "b.csv": "2\n"})
	m := &jobs.Manifest{Jobs: []jobs.Job{
		{File: "a.csv", IDType: "pidm"},
		{File: "b.csv", IDType: "PIDM"},
	}}

	_, err := jobs.Run(context.Background(), m, defaults, 1)
	require.ErrorIs(t, err, jobs.ErrDuplicateOutput)

	_, statErr := os.Stat(defaults.OutputsDir)
	assert.True(t, os.IsNotExist(statErr), "nothing runs when outputs collide")
}

func TestRun_InvalidKindReported(t *testing.T) {
	defaults := setup(t, map[string]string{"a.csv": "1\n"})
	m := &jobs.Manifest{Jobs: []jobs.Job{{File: "a.csv", IDType: "ssn"}}}

	_, err := jobs.Run(context.Background(), m, defaults, 1)
	assert.ErrorIs(t, err, idkind.ErrUnsupportedKind)
}

func TestRun_EmptyManifest(t *testing.T) {
	_, err := jobs.Run(context.Background(), &jobs.Manifest{}, pipeline.Request{}, 1)
	assert.ErrorIs(t, err, jobs.ErrEmptyManifest)
}
