// Package output writes rendered SQL text into the outputs directory.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rshade/idbatch/internal/logging"
)

// ErrInvalidName indicates an output name that is empty or escapes the directory.
var ErrInvalidName = errors.New("invalid output file name")

// Default permissions.
const (
	defaultFilePerm os.FileMode = 0o644
	defaultDirPerm  os.FileMode = 0o755
)

// Writer overwrites text files under Dir. Writes go to a temporary file in
// the same directory which is then renamed over the target, so readers never
// see a half-written file.
type Writer struct {
	Dir string
}

// New creates a Writer rooted at dir.
func New(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("output directory must not be empty")
	}
	return &Writer{Dir: dir}, nil
}

// Path returns the destination path for name without writing anything.
func (w *Writer) Path(name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(w.Dir, clean), nil
}

// Write stores payload at Dir/name, creating directories as needed, and
// returns the path written. The payload is written verbatim.
func (w *Writer) Write(ctx context.Context, name, payload string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest, err := w.Path(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeAtomic(dir, dest, payload); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}

	logging.FromContext(ctx).Debug().
		Str("component", "output").
		Str("path", dest).
		Int("bytes", len(payload)).
		Msg("output written")
	return dest, nil
}

func writeAtomic(dir, dest, payload string) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, defaultFilePerm)

	if _, err := tmp.WriteString(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
