package config

import (
	"github.com/rshade/idbatch/internal/logging"
)

// ToLoggingConfig converts the logging section into a logging.Config.
// When File is set the output is the file; otherwise stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
