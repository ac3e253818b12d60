// Package logging hands out zerolog loggers configured from LOG_LEVEL.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

func level() zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// New returns a logger tagged with a component name.
func New(component string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		Level(level()).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
