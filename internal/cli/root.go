package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
	"github.com/rshade/idbatch/internal/logging"
)

// skipConfigLoad marks commands that read or write the config file themselves
// and must run even when the file is invalid.
const skipConfigLoad = "idbatch/skip-config-load"

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	debug      bool
	lookupEnv  func(string) (string, bool)
}

// NewRootCmd creates the root Cobra command for the idbatch CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult
	flags := &rootFlags{lookupEnv: lookupEnv}

	cmd := &cobra.Command{
		Use:   "idbatch",
		Short: "Turn identifier lists into batched SQL IN clauses",
		Long: `idbatch reads a CSV or spreadsheet column of PIDM, WHKEY or PANTHERID values,
zero-pads them and writes SQL IN (...) fragments of at most 1000 values each.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			path, explicit := config.ResolvePath(flags.configPath, lookupEnv)
			cfg.SetConfigPath(path)
			if cmd.Annotations[skipConfigLoad] == "" {
				loaded, err := config.Load(path, explicit, lookupEnv)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			result := setupLogging(cmd, cfg, flags)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default ./idbatch.yaml, or $IDBATCH_CONFIG)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		NewGenerateCmd(),
		newJobsCmd(),
		NewServeCmd(),
		NewKindsCmd(),
		newConfigCmd(flags),
	)

	return cmd
}

const rootCmdExample = `  # Render uploads/students.csv as PIDM batches into outputs/pidm_output.txt
  idbatch generate --file students.csv --idtype pidm

  # The first row is a header containing a WHKEY column
  idbatch generate --file warehouse.xlsx --idtype whkey --header

  # Emit the legacy "OR k.<field> IN (...)" form on every batch
  idbatch generate --file ids.csv --idtype pantherid --style legacy

  # Run several files at once
  idbatch jobs run jobs.yaml --concurrency 4

  # Serve the formatter over HTTP
  idbatch serve --addr :8080

  # Write a default configuration file
  idbatch config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(),
		NewConfigShowCmd(),
		NewConfigValidateCmd(flags),
	)
	return cmd
}

// newJobsCmd creates the jobs command group.
func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Run several identifier files from a manifest"}
	cmd.AddCommand(NewJobsRunCmd())
	return cmd
}
