package log

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

const (
	FlagLogLevel  = "loglevel"
	FlagLogFormat = "logformat"
)

var logLevels = []string{"debug", "info", "warn", "error"}

func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagLogLevel, "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP(FlagLogFormat, "f", "text", "set the log format (text, json)")
}

// GetBaseLogger builds the logger configured by the logging flags. Logs are written to the
// error output of the command so they never mix with rendered results.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logLevel, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	format := cmd.Flag(FlagLogFormat).Value.String()
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: logLevel,
		})
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: logLevel,
		})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	logLevel := cmd.Flag(FlagLogLevel).Value.String()
	if !slices.Contains(logLevels, logLevel) {
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", logLevel)
	}
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level, nil
}
