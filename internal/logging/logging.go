// Package logging builds the structured loggers shared by every papertrade
// component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// New returns a logger writing at the given level ("debug", "info", "warn",
// "error"). Unknown levels fall back to info. When console is true the
// output is human readable, otherwise it is one JSON object per line.
func New(level string, w io.Writer, console bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	var writer log.Writer = &log.IOWriter{Writer: w}
	if console {
		writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    false,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return &log.Logger{
		Level:      ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests and as the
// default when a component is built without a logger.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
