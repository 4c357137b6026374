package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/idbatch/internal/logging"
)

func TestNewLogger_LevelAndJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewLogger(logging.Config{Level: "warn", Format: "json"}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	l := logging.NewLogger(logging.Config{Level: "loud"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("stderr when no file", func(t *testing.T) {
		res := logging.NewLoggerWithPath(logging.Config{Output: logging.OutputStderr})
		assert.False(t, res.UsingFile)
		assert.False(t, res.FallbackUsed)
		require.NoError(t, res.Close())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "idbatch.log")
		res := logging.NewLoggerWithPath(logging.Config{Output: logging.OutputFile, File: path, Level: "info"})
		require.True(t, res.UsingFile)
		res.Logger.Info().Msg("to file")
		require.NoError(t, res.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("fallback when directory is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		res := logging.NewLoggerWithPath(logging.Config{
			Output: logging.OutputFile,
			File:   filepath.Join(blocker, "idbatch.log"),
		})
		assert.False(t, res.UsingFile)
		assert.True(t, res.FallbackUsed)
		assert.NotEmpty(t, res.FallbackReason)
	})
}

func TestTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewLogger(logging.Config{Level: "debug"}, &buf)
	ctx := l.WithContext(context.Background())

	assert.Empty(t, logging.TraceIDFromContext(ctx))

	id := logging.GetOrGenerateTraceID(ctx)
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	ctx = logging.ContextWithTraceID(ctx, id)
	assert.Equal(t, id, logging.TraceIDFromContext(ctx))
	assert.Equal(t, id, logging.GetOrGenerateTraceID(ctx))

	logging.FromContext(ctx).Info().Msg("traced")
	assert.Contains(t, buf.String(), `"trace_id":"`+id+`"`)
}

func TestFromContext_NoLogger(t *testing.T) {
	l := logging.FromContext(context.Background())
	require.NotNil(t, l)
	l.Info().Msg("should not panic")
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logging.ComponentLogger(logging.NewLogger(logging.Config{}, &buf), "ingest")
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"ingest"`)
}
