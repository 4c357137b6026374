package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyVersion = "version"
	keyPaths   = "paths"
	keyFormat  = "format"
	keyLogging = "logging"
	keyServer  = "server"
	keyJobs    = "jobs"
)

// MergeYAML loads a YAML file and merges its top-level keys onto
// target. Sections present in the file are unmarshalled over the current
// values, so a file that sets only format.style keeps the default batch size.
// Unknown top-level keys are rejected so typos surface early.
func MergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in MergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if err = decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying %s section %q: %w", overlayPath, key, err)
		}
	}

	return nil
}

// decodeSection decodes node onto the field of target named by key.
func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyVersion:
		return node.Decode(&target.Version)
	case keyPaths:
		return node.Decode(&target.Paths)
	case keyFormat:
		return node.Decode(&target.Format)
	case keyLogging:
		return node.Decode(&target.Logging)
	case keyServer:
		return node.Decode(&target.Server)
	case keyJobs:
		return node.Decode(&target.Jobs)
	default:
		return fmt.Errorf("%w: unknown config key %q", ErrInvalidConfig, key)
	}
}
