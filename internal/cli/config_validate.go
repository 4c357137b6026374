package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd(flags *rootFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file for syntax and semantic correctness.

This includes:
- YAML syntax and unknown keys
- Config version compatibility
- Output style and batch size
- Server and jobs limits`,
		Example: `  # Validate current configuration
  idbatch config validate

  # Validate and show detailed information
  idbatch config validate --verbose`,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, flags, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, flags *rootFlags, verbose bool) error {
	path, explicit := config.ResolvePath(flags.configPath, flags.lookupEnv)

	cfg, err := config.Load(path, explicit, flags.lookupEnv)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if _, statErr := os.Stat(path); statErr != nil {
		statusLine(out, true, fmt.Sprintf("No configuration file at %s; defaults are valid", path))
	} else {
		statusLine(out, true, "Configuration is valid")
	}

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	cmd.Printf("  Uploads directory: %s\n", cfg.Paths.UploadsDir)
	cmd.Printf("  Outputs directory: %s\n", cfg.Paths.OutputsDir)
	cmd.Printf("  Style: %s (qualifier %q)\n", cfg.Format.Style, cfg.Format.Qualifier)
	cmd.Printf("  Batch size: %d\n", cfg.Format.BatchSize)
	cmd.Printf("  Header row: %t\n", cfg.Format.Header)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	cmd.Printf("  Server address: %s (max upload %d MB)\n", cfg.Server.Addr, cfg.Server.MaxUploadMB)
	cmd.Printf("  Job concurrency: %d\n", cfg.Jobs.Concurrency)
}
