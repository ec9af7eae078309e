package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	corelogger "github.com/avstation/stationd/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger is re-exported for test convenience.
type NopLogger = corelogger.NopLogger

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// New returns a Logger for the given component. Console output is used when
// APP_ENV is "dev", JSON otherwise.
func New(component string) Logger {
	return NewWithLevel(component, "")
}

// NewWithLevel returns a Logger honoring the given minimum level
// ("debug", "info", "warn", "error"). An empty or unknown level means info.
func NewWithLevel(component, level string) Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	var z zerolog.Logger
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer)
	} else {
		z = zerolog.New(os.Stdout)
	}
	z = z.Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
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
