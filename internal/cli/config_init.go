package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// It writes the default configuration, creates the uploads and outputs
// directories and drops a .gitignore into outputs.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values at ./idbatch.yaml
(or the path given by --config / IDBATCH_CONFIG), creates the uploads and
outputs directories, and adds a .gitignore to outputs so generated SQL, which
contains real identifiers, is not committed.`,
		Example: `  # Create ./idbatch.yaml
  idbatch config init

  # Create configuration, overwriting existing
  idbatch config init --force`,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path := config.FromContext(cmd.Context()).ConfigPath()

	// Check if config already exists and force isn't set
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	cfg := config.New()
	cfg.SetConfigPath(path)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.Paths.UploadsDir, 0o750); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}

	// Create .gitignore (never overwrites existing)
	created, err := config.EnsureGitignore(cfg.Paths.OutputsDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	if created {
		cmd.Printf("Created .gitignore in %s to keep generated output out of version control\n", cfg.Paths.OutputsDir)
	}

	return nil
}
