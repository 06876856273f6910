package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes a zerolog.Logger based on the requested format.
// format can be "text" (human-friendly console) or "json" (structured).
func Setup(format string) zerolog.Logger {
	return SetupWriter(format, os.Stderr)
}

// SetupWriter is Setup with an explicit destination, used by the server
// to log to stdout and by tests to capture output.
func SetupWriter(format string, out io.Writer) zerolog.Logger {
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
