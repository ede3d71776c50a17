// Package logging builds the process logger. Logs always go to stderr
// because stdout carries records, images, or the MCP protocol.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Levels accepted by New, in increasing severity
var Levels = []string{"debug", "info", "warn", "error"}

// Options controls logger construction
type Options struct {
	Level string
	// JSON selects the JSON formatter instead of text
	JSON bool
	// Output defaults to os.Stderr
	Output io.Writer
}

// ParseLevel converts a configured level name into a logrus level
func ParseLevel(name string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info", "":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %s (must be one of: %s)", name, strings.Join(Levels, ", "))
	}
}

// New creates a configured logger
func New(opts Options) (*logrus.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    true,
			QuoteEmptyFields: true,
		})
	}
	return logger, nil
}

// StdLogger adapts logger for libraries that take a *log.Logger. Lines are
// logged at the given level.
func StdLogger(logger *logrus.Logger, level logrus.Level) *log.Logger {
	return log.New(logger.WriterLevel(level), "", 0)
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
