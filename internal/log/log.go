// Package log provides the process-wide structured logger.
//
// Everything goes to stderr: stdout is reserved for the progress markers the
// presentation shell parses.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	out     io.Writer = os.Stderr
	noColor bool
	logger  zerolog.Logger
)

func init() {
	rebuild()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if level, err := zerolog.ParseLevel(lvl); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
}

func rebuild() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// SetOutput redirects the logger, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	out = w
	rebuild()
}

// SetNoColor turns off ANSI colors in console output.
func SetNoColor(disable bool) {
	noColor = disable
	rebuild()
}

// SetLevel sets the global log level
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

// WarnWithErr logs a warning with the error object
func WarnWithErr(err error, msg string) {
	logger.Warn().Err(err).Msg(msg)
}

// ErrorWithErr logs an error with the error object
func ErrorWithErr(err error, msg string) {
	logger.Error().Err(err).Msg(msg)
}
