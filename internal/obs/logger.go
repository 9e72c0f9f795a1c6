// Package obs carries the ambient logging and metrics stack shared by
// every component.
package obs

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger writing structured JSON to stdout at
// the given level ("debug", "info", "warn", "error"; unrecognized values
// fall back to info).
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
