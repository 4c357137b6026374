package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
	"github.com/rshade/idbatch/internal/ingest"
	"github.com/rshade/idbatch/internal/pipeline"
)

// generateFlags holds the flags of the generate command.
type generateFlags struct {
	file       string
	idType     string
	header     bool
	sheet      string
	style      string
	qualifier  string
	batchSize  int
	uploadsDir string
	outputsDir string
	dryRun     bool
}

// NewGenerateCmd creates the generate command, which renders one input file.
func NewGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render an identifier file as batched SQL IN clauses",
		Long: `Reads the identifier column of a CSV or spreadsheet in the uploads directory,
zero-pads every value to the width of its kind and writes one
"<field> IN (...)" fragment per 1000 identifiers to <idtype>_output.txt in the
outputs directory. Nothing is written if any row is invalid.`,
		Example: `  # Headerless single-column CSV
  idbatch generate --file students.csv --idtype pidm

  # Spreadsheet with a PANTHERID header row, printed instead of saved
  idbatch generate --file roster.xlsx --idtype pantherid --header --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "input file name, relative to the uploads directory")
	cmd.Flags().StringVarP(&flags.idType, "idtype", "t", "", "identifier kind: pidm, whkey or pantherid")
	cmd.Flags().BoolVar(&flags.header, "header", false, "treat the first row as a header and read the kind's column")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "worksheet to read (default: the first sheet)")
	cmd.Flags().StringVar(&flags.style, "style", "", "fragment style: standard or legacy")
	cmd.Flags().StringVar(&flags.qualifier, "qualifier", "", "table alias used by the legacy style")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "identifiers per fragment (1-1000)")
	cmd.Flags().StringVar(&flags.uploadsDir, "uploads-dir", "", "directory holding input files")
	cmd.Flags().StringVar(&flags.outputsDir, "outputs-dir", "", "directory receiving output files")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the result instead of writing it")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("idtype")

	return cmd
}

// requestFromConfig builds the pipeline defaults from the loaded configuration.
func requestFromConfig(cfg *config.Config) pipeline.Request {
	return pipeline.Request{
		Header:     cfg.Format.Header,
		Sheet:      cfg.Format.Sheet,
		Style:      cfg.Format.Style,
		Qualifier:  cfg.Format.Qualifier,
		BatchSize:  cfg.Format.BatchSize,
		UploadsDir: cfg.Paths.UploadsDir,
		OutputsDir: cfg.Paths.OutputsDir,
	}
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	ctx := cmd.Context()
	req := requestFromConfig(config.FromContext(ctx))
	req.File = flags.file
	req.Kind = flags.idType
	req.DryRun = flags.dryRun

	changed := cmd.Flags().Changed
	if changed("header") {
		req.Header = flags.header
	}
	if changed("sheet") {
		req.Sheet = flags.sheet
	}
	if changed("style") {
		req.Style = flags.style
	}
	if changed("qualifier") {
		req.Qualifier = flags.qualifier
	}
	if changed("batch-size") {
		req.BatchSize = flags.batchSize
	}
	if changed("uploads-dir") {
		req.UploadsDir = flags.uploadsDir
	}
	if changed("outputs-dir") {
		req.OutputsDir = flags.outputsDir
	}

	res, err := pipeline.Run(ctx, req)
	if errors.Is(err, ingest.ErrFileNotFound) {
		return &fileNotFoundError{name: req.File, dir: req.UploadsDir, err: err}
	}
	if err != nil {
		return err
	}

	if req.DryRun {
		return writePayload(cmd.OutOrStdout(), res.Payload)
	}

	out := cmd.OutOrStdout()
	dimLine(out, fmt.Sprintf("Formatted %s %s identifiers into %s batch(es)",
		formatCount(res.Identifiers), res.Kind.ColumnName, formatCount(res.Fragments)))
	statusLine(out, true, "Output saved to "+res.OutputPath)
	return nil
}

// writePayload prints the rendered fragments followed by a newline.
func writePayload(w io.Writer, payload string) error {
	if payload == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, payload)
	return err
}

// fileNotFoundError reports a missing input in the words users expect.
type fileNotFoundError struct {
	name string
	dir  string
	err  error
}

func (e *fileNotFoundError) Error() string {
	return fmt.Sprintf("File '%s' not found in %s", e.name, e.dir)
}

func (e *fileNotFoundError) Unwrap() error {
	return e.err
}
