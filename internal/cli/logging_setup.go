package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
	"github.com/rshade/idbatch/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags,
// then stores the logger, a trace ID and cfg in the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config, flags *rootFlags) logging.LogPathResult {
	loggingCfg := cfg.Logging

	if flags.debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	if envLevel, ok := flags.lookupEnv(logging.EnvLogLevel); ok && envLevel != "" && !flags.debug {
		loggingCfg.Level = envLevel
	}
	if envFormat, ok := flags.lookupEnv(logging.EnvLogFormat); ok && envFormat != "" {
		loggingCfg.Format = envFormat
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := result.Logger.WithContext(cmd.Context())
	ctx = logging.ContextWithTraceID(ctx, logging.GetOrGenerateTraceID(ctx))
	ctx = config.ContextWithConfig(ctx, cfg)
	cmd.SetContext(ctx)

	log := logging.ComponentLogger(*logging.FromContext(ctx), "cli")
	log.Info().
		Str("command", cmd.CommandPath()).
		Str("config", cfg.ConfigPath()).
		Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
