package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
	"github.com/rshade/idbatch/internal/jobs"
)

// NewJobsRunCmd creates the "jobs run" command.
func NewJobsRunCmd() *cobra.Command {
	var (
		concurrency int
		uploadsDir  string
		outputsDir  string
	)

	cmd := &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Render every file listed in a manifest",
		Long: `Runs one generate per manifest entry, several at a time. Every job runs even
when others fail; the command fails if any job failed.

Manifest format:

  jobs:
    - file: students.csv
      idtype: pidm
    - file: warehouse.xlsx
      idtype: whkey
      header: true
      style: legacy
      output: whkey_legacy.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			m, err := jobs.LoadManifest(args[0])
			if err != nil {
				return err
			}

			defaults := requestFromConfig(cfg)
			if cmd.Flags().Changed("uploads-dir") {
				defaults.UploadsDir = uploadsDir
			}
			if cmd.Flags().Changed("outputs-dir") {
				defaults.OutputsDir = outputsDir
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Jobs.Concurrency
			}

			outcomes, runErr := jobs.Run(ctx, m, defaults, concurrency)
			if errors.Is(runErr, jobs.ErrDuplicateOutput) || errors.Is(runErr, jobs.ErrEmptyManifest) {
				return runErr
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					statusLine(out, false, fmt.Sprintf("%s (%s): %v", o.Job.File, o.Job.IDType, o.Err))
					continue
				}
				statusLine(out, true, fmt.Sprintf("%s (%s): %s identifiers -> %s",
					o.Job.File, o.Job.IDType, formatCount(o.Result.Identifiers), o.Result.OutputPath))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(outcomes))
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "jobs to run at once (default from config)")
	cmd.Flags().StringVar(&uploadsDir, "uploads-dir", "", "directory holding input files")
	cmd.Flags().StringVar(&outputsDir, "outputs-dir", "", "directory receiving output files")

	return cmd
}
