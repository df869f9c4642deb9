// Package logger builds the charmbracelet/log loggers used across vellum.
//
// The server speaks its protocol on stdout, so log output always goes to
// stderr or a file, never stdout.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vellum-editor/vellum/internal/config"
)

// New creates a logger for the given subsystem prefix from the logging
// configuration. An unopenable log file falls back to stderr.
func New(prefix string, cfg config.Logging) *log.Logger {
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		}
	}

	formatter := log.TextFormatter
	if cfg.Format == "json" {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(out, log.Options{
		Prefix:          prefix,
		Level:           ParseLevel(cfg.Level),
		ReportTimestamp: true,
		Formatter:       formatter,
	})
}

// Discard returns a logger that drops everything. Useful as a default in
// library code and tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a configured level name to a charmbracelet log level.
// Unknown names fall back to info.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
