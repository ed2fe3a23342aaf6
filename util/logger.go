package util

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger. format is "console" for
// human-readable output or "json" for one JSON object per line.
func SetupLogger(level, format string) error {
	return setupLogger(os.Stderr, level, format)
}

func setupLogger(out io.Writer, level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var writer io.Writer
	switch format {
	case "json":
		writer = out
	case "console", "":
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("invalid log format: %s", format)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return nil
}
