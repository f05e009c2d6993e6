// Package logging provides the structured logger used throughout the
// connector.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the small surface the connector needs.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a logger that writes human-readable console output to stderr
// at info level. Use NewVerbose for debug-level output.
func New() *Logger {
	return newAtLevel(zerolog.InfoLevel)
}

// NewVerbose creates a console logger with debug-level messages enabled.
func NewVerbose() *Logger {
	return newAtLevel(zerolog.DebugLevel)
}

func newAtLevel(level zerolog.Level) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	return &Logger{
		zlog: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything. Useful as a default when
// the caller doesn't supply one.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func (l *Logger) Info() *zerolog.Event  { return l.zlog.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zlog.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }

func (l *Logger) Infof(format string, args ...interface{})  { l.zlog.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zlog.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zlog.Error().Msgf(format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.zlog.Debug().Msgf(format, args...) }

// With returns a child logger context, for callers that want to attach
// structured fields (transfer id, path, etc.) before emitting.
func (l *Logger) With() zerolog.Context { return l.zlog.With() }
