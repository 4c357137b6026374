// Package config loads idbatch settings from defaults, an optional YAML file
// and environment variables. Command-line flags are applied last by the CLI.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/idbatch/internal/engine/batch"
	"github.com/rshade/idbatch/internal/formatter"
)

// Config file versions.
const (
	// CurrentVersion is written by Save and config init.
	CurrentVersion = "1.0.0"

	// supportedVersions is the semver constraint a loaded file must satisfy.
	supportedVersions = "^1.0.0"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "idbatch.yaml"

// Environment variables.
const (
	EnvConfig     = "IDBATCH_CONFIG"
	EnvUploadsDir = "IDBATCH_UPLOADS_DIR"
	EnvOutputsDir = "IDBATCH_OUTPUTS_DIR"
	EnvStyle      = "IDBATCH_STYLE"
	EnvHeader     = "IDBATCH_HEADER"
	EnvLogFile    = "IDBATCH_LOG_FILE"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full idbatch configuration.
type Config struct {
	Version string        `yaml:"version"`
	Paths   PathsConfig   `yaml:"paths"`
	Format  FormatConfig  `yaml:"format"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Jobs    JobsConfig    `yaml:"jobs"`

	configPath string
}

// PathsConfig holds the input and output roots.
type PathsConfig struct {
	UploadsDir string `yaml:"uploads_dir"`
	OutputsDir string `yaml:"outputs_dir"`
}

// FormatConfig holds rendering and input-decoding defaults.
type FormatConfig struct {
	Style     string `yaml:"style"`
	Qualifier string `yaml:"qualifier"`
	BatchSize int    `yaml:"batch_size"`
	Header    bool   `yaml:"header"`
	Sheet     string `yaml:"sheet,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ServerConfig holds settings for "idbatch serve".
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// JobsConfig holds settings for "idbatch jobs run".
type JobsConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		Paths: PathsConfig{
			UploadsDir: "uploads",
			OutputsDir: "outputs",
		},
		Format: FormatConfig{
			Style:     string(formatter.StyleStandard),
			Qualifier: formatter.DefaultQualifier,
			BatchSize: batch.DefaultBatchSize,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
		Jobs: JobsConfig{
			Concurrency: 4,
		},
		configPath: DefaultFileName,
	}
}

// ResolvePath picks the config file: flag, then IDBATCH_CONFIG, then
// DefaultFileName in the working directory. explicit reports whether the
// user named the file, in which case it must exist.
func ResolvePath(flagValue string, lookupEnv func(string) (string, bool)) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if v, ok := lookupEnv(EnvConfig); ok && v != "" {
		return v, true
	}
	return DefaultFileName, false
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. A missing file is an error only when mustExist is set.
func Load(path string, mustExist bool, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := New()
	cfg.configPath = path

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || mustExist {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := MergeYAML(cfg, path); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvUploadsDir); ok && v != "" {
		c.Paths.UploadsDir = v
	}
	if v, ok := lookupEnv(EnvOutputsDir); ok && v != "" {
		c.Paths.OutputsDir = v
	}
	if v, ok := lookupEnv(EnvStyle); ok && v != "" {
		c.Format.Style = v
	}
	if v, ok := lookupEnv(EnvHeader); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, EnvHeader, v)
		}
		c.Format.Header = b
	}
	if v, ok := lookupEnv(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	return nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	var errs []error

	if err := checkVersion(c.Version); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Paths.UploadsDir) == "" {
		errs = append(errs, errors.New("paths.uploads_dir must not be empty"))
	}
	if strings.TrimSpace(c.Paths.OutputsDir) == "" {
		errs = append(errs, errors.New("paths.outputs_dir must not be empty"))
	}
	if _, err := formatter.ParseStyle(c.Format.Style); err != nil {
		errs = append(errs, fmt.Errorf("format.style: %w", err))
	}
	if c.Format.BatchSize < batch.MinBatchSize || c.Format.BatchSize > batch.MaxBatchSize {
		errs = append(errs, fmt.Errorf("format.batch_size: %w: got %d", batch.ErrInvalidBatchSize, c.Format.BatchSize))
	}
	if c.Server.MaxUploadMB < 1 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be >= 1, got %d", c.Server.MaxUploadMB))
	}
	if c.Jobs.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("jobs.concurrency must be >= 1, got %d", c.Jobs.Concurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("version %q is not a semantic version: %w", v, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(ver) {
		return fmt.Errorf("version %s is not supported (want %s)", v, supportedVersions)
	}
	return nil
}

// ConfigPath returns the file this Config was loaded from or will be saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML to ConfigPath.
func (c *Config) Save() error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	//nolint:gosec // Config holds no secrets and is meant to be shared.
	if err := os.WriteFile(c.configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// YAML renders the configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

type configKey struct{}

// ContextWithConfig stores cfg in ctx.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the Config stored in ctx, or defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	return New()
}
