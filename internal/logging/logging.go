// Package logging builds the process logger: human-readable output on stderr
// and, optionally, JSON lines in a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the root logger.
type Options struct {
	Level string // zerolog level name; empty means info
	File  string // rotating JSON log file; empty disables it

	// Console overrides stderr, mostly for tests.
	Console io.Writer
	NoColor bool
}

// New builds the root logger.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = l
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime, NoColor: opts.NoColor}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = zerolog.MultiLevelWriter(out, file)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// JobReporter adapts a logger to the job manager's status callback.
func JobReporter(log zerolog.Logger) func(string) {
	return func(status string) {
		log.Debug().Str("action", "job_status").Str("status", status).Send()
	}
}
