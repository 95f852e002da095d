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
const DefaultLevel = "info"

// New builds the command-line logger. Console output is meant for humans
// on a terminal; jsonOutput switches to one JSON object per line. A nil w
// writes to stderr so stdout stays free for command output.
func New(level string, jsonOutput bool, w io.Writer) (zerolog.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	if w == nil {
		w = os.Stderr
	}
	if !jsonOutput {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    noColor(),
		}
	}

	return zerolog.New(w).
		Level(parsedLevel).
		With().
		Timestamp().
		Logger(), nil
}

// noColor honors the NO_COLOR convention (https://no-color.org).
func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
