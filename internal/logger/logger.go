// Package logger builds the application's charmbracelet loggers.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates the root logger writing to w (os.Stderr when nil) with
// timestamps enabled. level is one of debug/info/warn/error; format is
// text, json or logfmt.
func New(w io.Writer, level, format string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Formatter:       formatter(format),
	})

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// Component returns a child logger tagged with the component name, the way
// log lines are prefixed with [Player], [Storage] and so on.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = log.Default()
	}
	return l.WithPrefix(name)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func formatter(name string) log.Formatter {
	switch strings.ToLower(name) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
