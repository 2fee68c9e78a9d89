// Package logging builds the zerolog loggers used across pageloader.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.InfoLevel

// New returns a JSON logger writing to w, tagged with component.
func New(w io.Writer, component string, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if component = strings.TrimSpace(component); component != "" {
		ctx = ctx.Str("component", component)
	}
	return ctx.Logger()
}

// NewConsole returns a human-readable logger for interactive use.
func NewConsole(w io.Writer, component string, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}, component, level)
}

// ParseLevel parses a level name, falling back to DefaultLevel when blank.
func ParseLevel(value string) (zerolog.Level, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(value))
	if err != nil {
		return DefaultLevel, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}
