// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for LOG_FILE output.
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// Options controls how New configures the logger.
type Options struct {
	// Level is a logrus level name ("debug", "info", ...). Unknown values fall back to info.
	Level string
	// JSON selects the JSON formatter; otherwise a text formatter is used.
	JSON bool
	// File, when set, receives a copy of every entry with size-based rotation.
	File string
	// Console is where entries go besides File. Defaults to os.Stdout.
	Console io.Writer
}

// New returns a logrus logger configured from opts.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if opts.File == "" {
		logger.SetOutput(console)
		return logger
	}

	logger.SetOutput(io.MultiWriter(console, NewFileWriter(opts.File)))
	return logger
}

// NewFileWriter returns a rotating writer for path.
func NewFileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}
}

// ForEnvironment is a convenience wrapper used by main: production gets JSON output.
func ForEnvironment(environment, level, file string) *logrus.Logger {
	logger := New(Options{
		Level: level,
		JSON:  environment == "production",
		File:  file,
	})
	logger.WithField("environment", environment).Debugf("logger initialised at level %s", logger.GetLevel())
	return logger
}
