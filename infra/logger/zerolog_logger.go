package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// format, when set via SetFormat, overrides the APP_ENV-based console/JSON
// detection with an explicit choice from config.LoggingConfig.Format.
var format string

// SetFormat overrides the output format ("console" or "json") used by
// subsequent NewZerologLogger calls, named by config.LoggingConfig.Format.
// An empty or unrecognized value falls back to the APP_ENV heuristic.
func SetFormat(f string) { format = f }

// NewZerologLogger creates a ZerologLogger. The output format is taken
// from SetFormat if set, otherwise from the APP_ENV environment variable
// (APP_ENV=dev selects console output). All logs include the provided
// component field.
func NewZerologLogger(component string) Logger {
	console := format == "console"
	if format == "" {
		console = strings.ToLower(os.Getenv("APP_ENV")) == "dev"
	}
	var z zerolog.Logger
	if console {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	} else {
		z = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	}
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
