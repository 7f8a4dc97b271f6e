// Package logger builds the charmbracelet/log loggers shared by the commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a charm log on stderr with the given level and format.
// Unknown values fall back to info and text; Validate the config first to reject them.
func New(prefix, level, format string) *log.Logger {
	return NewWithWriter(os.Stderr, prefix, level, format)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, prefix, level, format string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	f, err := ParseFormatter(format)
	if err != nil {
		f = log.TextFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           lvl,
		ReportTimestamp: f != log.TextFormatter,
		Formatter:       f,
	})
}

// ParseFormatter maps a format name (text, json, logfmt) to a formatter.
func ParseFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("unknown log format %q", format)
}
