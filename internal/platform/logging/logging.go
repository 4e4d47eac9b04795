// Package logging constructs the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a service-scoped logger writing JSON lines to stderr.
//
// Stderr keeps stdout free for the stdio MCP transport. The level is read
// from FABLEFORGE_LOG_LEVEL and defaults to info.
func New(service string) zerolog.Logger {
	return NewWithWriter(service, os.Stderr)
}

// NewWithWriter is New with an explicit sink, for tests.
func NewWithWriter(service string, w io.Writer) zerolog.Logger {
	level := parseLevel(os.Getenv("FABLEFORGE_LOG_LEVEL"))
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

func parseLevel(value string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
