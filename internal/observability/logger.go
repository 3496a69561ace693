package observability

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger returns the process-wide JSON logger. Level defaults to info and
// can be lowered with LOG_LEVEL=debug.
func NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
