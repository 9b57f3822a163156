package logging

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger writing to w. Text output goes through a
// console writer, json output is one object per line. Verbose lowers the level
// from warn to debug.
func Setup(w io.Writer, verbose bool, json bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	if !json {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(level)

	log.Logger = l
	return l
}

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
