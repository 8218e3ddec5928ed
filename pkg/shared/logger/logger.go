package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/sfl-io/sflreport/pkg/shared/config"
)

// NewLogger builds the hclog logger used by every command.
// Logs go to stderr so that rendered reports can be piped from stdout.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stderr)
}

func newLogger(cfg *config.Config, name string, output io.Writer) hclog.Logger {
	var logLevel hclog.Level

	if cfg != nil && cfg.Logger.Level != "" {
		logLevel = getLogLevel(strings.ToUpper(cfg.Logger.Level))
	} else {
		// env variables has the second priority
		logLevel = getLogLevel(strings.ToUpper(os.Getenv("SFLREPORT_LOG_LEVEL")))
	}

	var loggerCfg *config.Logger
	if cfg != nil {
		loggerCfg = &cfg.Logger
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Output:          output,
		Level:           logLevel,
		DisableTime:     config.GetBoolValue(loggerCfg, "DisableTime", true),
		JSONFormat:      config.GetBoolValue(loggerCfg, "JSONFormat", false),
		IncludeLocation: config.GetBoolValue(loggerCfg, "IncludeLocation", false),
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
