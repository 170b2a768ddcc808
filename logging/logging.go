// Package logging builds the logrus logger used by the CLI and handed to the router.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/config"
)

// New returns a logger configured from cfg writing to out (stderr when nil).
// debugMode forces the debug level regardless of cfg.Level.
func New(cfg config.LoggingConfig, debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		if cfg.Level != "" {
			logger.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		}
		level = logrus.InfoLevel
	}
	if debugMode {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
