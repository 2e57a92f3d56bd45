// Package logging builds the run logger: zerolog writing to the console and,
// when it can be opened, appending to the run log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// New returns a logger echoing to stdout and appending to the file at path.
// If the file cannot be opened the logger degrades to console-only; the run
// must not die for want of its own log. The returned closer is a no-op in
// that case.
func New(path, level string) (zerolog.Logger, func() error, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	var out io.Writer = console
	closer := func() error { return nil }
	fileOK := path == ""

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				out = zerolog.MultiLevelWriter(console, f)
				closer = f.Close
				fileOK = true
			}
		}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	if !fileOK {
		logger.Warn().Str("path", path).Msg("run log file unavailable, logging to console only")
	}
	return logger, closer, nil
}

// WithComponent tags a sub-logger with the component emitting it.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
