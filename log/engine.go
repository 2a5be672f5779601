package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// EngineLogger routes the printf-style loggers of the storage engines
// (badger.Logger, pebble.Logger) into zerolog.
type EngineLogger struct {
	logger zerolog.Logger
}

// NewEngineLogger returns an EngineLogger tagged with the engine name.
// It reads Engine at call time so loggers created after Init pick up the new level.
func NewEngineLogger(engine string) *EngineLogger {
	return &EngineLogger{logger: Engine.With().Str("engine", engine).Logger()}
}

func (l *EngineLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msg(trim(format, args...))
}

func (l *EngineLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msg(trim(format, args...))
}

func (l *EngineLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(trim(format, args...))
}

func (l *EngineLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(trim(format, args...))
}

// Fatalf logs and panics instead of exiting: the process may be a host
// application that loaded the library.
func (l *EngineLogger) Fatalf(format string, args ...interface{}) {
	msg := trim(format, args...)
	l.logger.Error().Msg(msg)
	panic(msg)
}

// engines terminate most messages with a newline
func trim(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
