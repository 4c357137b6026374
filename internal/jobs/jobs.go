// Package jobs runs several pipeline requests described by a YAML manifest.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/logging"
	"github.com/rshade/idbatch/internal/pipeline"
)

// Manifest errors.
var (
	ErrEmptyManifest   = errors.New("manifest has no jobs")
	ErrDuplicateOutput = errors.New("jobs write the same output file")
)

// Manifest lists the jobs to run.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is one manifest entry. Unset optional fields take the runner defaults.
type Job struct {
	File      string `yaml:"file"`
	IDType    string `yaml:"idtype"`
	Header    *bool  `yaml:"header,omitempty"`
	Sheet     string `yaml:"sheet,omitempty"`
	Style     string `yaml:"style,omitempty"`
	Qualifier string `yaml:"qualifier,omitempty"`
	Output    string `yaml:"output,omitempty"`
}

// Outcome pairs a job with its result or error.
type Outcome struct {
	Job    Job
	Result *pipeline.Result
	Err    error
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyManifest, path)
	}
	return &m, nil
}

// request overlays the job's settings on defaults.
func (j Job) request(defaults pipeline.Request) pipeline.Request {
	req := defaults
	req.File = j.File
	req.Kind = j.IDType
	if j.Header != nil {
		req.Header = *j.Header
	}
	if j.Sheet != "" {
		req.Sheet = j.Sheet
	}
	if j.Style != "" {
		req.Style = j.Style
	}
	if j.Qualifier != "" {
		req.Qualifier = j.Qualifier
	}
	req.OutputName = j.Output
	return req
}

// outputName returns the file the job would write.
func (j Job) outputName() string {
	if j.Output != "" {
		return filepath.Clean(j.Output)
	}
	if cfg, err := idkind.Lookup(j.IDType); err == nil {
		return cfg.OutputFileName()
	}
	return ""
}

// checkOutputs rejects manifests where two jobs target the same file.
func checkOutputs(m *Manifest) error {
	seen := make(map[string]int, len(m.Jobs))
	for i, j := range m.Jobs {
		name := j.outputName()
		if name == "" {
			continue
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: jobs %d and %d both write %s", ErrDuplicateOutput, prev+1, i+1, name)
		}
		seen[name] = i
	}
	return nil
}

// Run executes every job with at most concurrency running at once. All jobs
// run even when some fail; outcomes are returned in manifest order and the
// error joins every failure.
func Run(ctx context.Context, m *Manifest, defaults pipeline.Request, concurrency int) ([]Outcome, error) {
	if m == nil || len(m.Jobs) == 0 {
		return nil, ErrEmptyManifest
	}
	if err := checkOutputs(m); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	log := logging.FromContext(ctx)
	outcomes := make([]Outcome, len(m.Jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range m.Jobs {
		g.Go(func() error {
			res, err := pipeline.Run(gctx, job.request(defaults))
			outcomes[i] = Outcome{Job: job, Result: res, Err: err}
			if err != nil {
				log.Warn().
					Str("component", "jobs").
					Int("job", i+1).
					Str("file", job.File).
					Err(err).
					Msg("job failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("job %d (%s): %w", i+1, o.Job.File, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}
