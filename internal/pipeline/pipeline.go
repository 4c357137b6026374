// Package pipeline runs one idbatch invocation: read the identifier table,
// render it, and write the result. Nothing is written unless every step
// before the write succeeded.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rshade/idbatch/internal/engine/batch"
	"github.com/rshade/idbatch/internal/formatter"
	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/ingest"
	"github.com/rshade/idbatch/internal/logging"
	"github.com/rshade/idbatch/internal/output"
)

// Request describes one invocation.
type Request struct {
	// File is resolved relative to UploadsDir unless it is absolute.
	File string
	Kind string

	Header    bool
	Sheet     string
	Style     string
	Qualifier string
	BatchSize int

	UploadsDir string
	OutputsDir string

	// OutputName overrides the default "<idtype>_output.txt".
	OutputName string

	// DryRun renders the payload without writing it.
	DryRun bool
}

// Result describes a completed invocation.
type Result struct {
	InputPath   string
	OutputPath  string
	Kind        idkind.Config
	Identifiers int
	Fragments   int
	Payload     string
	Duration    time.Duration
}

// InputPath resolves the request's input file.
func (r Request) InputPath() string {
	if filepath.IsAbs(r.File) {
		return r.File
	}
	return filepath.Join(r.UploadsDir, r.File)
}

// Run executes the request.
func Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := logging.FromContext(ctx).With().Str("component", "pipeline").Str("idtype", req.Kind).Logger()

	if req.File == "" {
		return nil, errors.New("input file name is required")
	}

	kind, err := idkind.Lookup(req.Kind)
	if err != nil {
		return nil, err
	}
	style, err := formatter.ParseStyle(req.Style)
	if err != nil {
		return nil, err
	}

	inputPath := req.InputPath()
	ids, err := ingest.Load(ctx, inputPath, ingest.Options{
		Column: kind.ColumnName,
		Header: req.Header,
		Sheet:  req.Sheet,
	})
	if err != nil {
		log.Debug().Err(err).Str("input", inputPath).Msg("failed to load identifiers")
		return nil, err
	}

	fragments, err := formatter.Format(ids, kind, formatter.Options{
		Style:     style,
		Qualifier: req.Qualifier,
		BatchSize: req.BatchSize,
		OnProgress: func(p *batch.Progress) {
			snap := p.Snapshot()
			log.Debug().
				Int("batch", snap.ProcessedBatches).
				Int("total_batches", snap.TotalBatches).
				Float64("percent", snap.PercentComplete).
				Msg("batch rendered")
			if p.IsComplete() {
				log.Debug().
					Int("identifiers", snap.TotalItems).
					Dur("elapsed", snap.ElapsedTime).
					Msg("all batches rendered")
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", inputPath, err)
	}

	res := &Result{
		InputPath:   inputPath,
		Kind:        kind,
		Identifiers: len(ids),
		Fragments:   len(fragments),
		Payload:     formatter.Assemble(fragments),
	}

	if !req.DryRun {
		w, err := output.New(req.OutputsDir)
		if err != nil {
			return nil, err
		}
		name := req.OutputName
		if name == "" {
			name = kind.OutputFileName()
		}
		res.OutputPath, err = w.Write(ctx, name, res.Payload)
		if err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	log.Info().
		Str("input", inputPath).
		Str("output", res.OutputPath).
		Int("identifiers", res.Identifiers).
		Int("fragments", res.Fragments).
		Dur("duration", res.Duration).
		Msg("identifiers rendered")
	return res, nil
}
