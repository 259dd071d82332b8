// Package logging builds the zerolog logger shared by csdash components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures New.
type Options struct {
	Service     string
	Level       string
	Development bool
	Output      io.Writer
}

// New returns a configured logger and installs it as the global zerolog logger.
// Development mode writes human readable console output.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var logger zerolog.Logger
	if opts.Development {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(out).With().Timestamp().Caller().Logger()
	}
	if opts.Service != "" {
		logger = logger.With().Str("service", opts.Service).Logger()
	}
	logger = logger.Level(ParseLevel(opts.Level))
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
