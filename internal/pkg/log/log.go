package log

import (
	"io"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// baseLogger is a subset of the zap.SugaredLogger methods.
type baseLogger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Sync() error
}

type Logger interface {
	baseLogger
	// AddPrefix returns a child logger, the prefix is prepended to each message.
	AddPrefix(prefix string) Logger
	DebugWriter() *LevelWriter
	InfoWriter() *LevelWriter
	WarnWriter() *LevelWriter
	ErrorWriter() *LevelWriter
}

// DebugLogger returns logs as string in tests.
type DebugLogger interface {
	Logger
	ConnectTo(writer io.Writer)
	Truncate()
	AllMessages() string
	DebugMessages() string
	InfoMessages() string
	WarnMessages() string
	ErrorMessages() string
	WarnAndErrorMessages() string
	AssertMessages(t assert.TestingT, expected string, msgAndArgs ...any) bool
}

type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// NewLogFormat creates LogFormat from a string.
// On an invalid value Console is used as the default, with an error.
func NewLogFormat(format string) (LogFormat, error) {
	logFormat := LogFormat(format)
	switch logFormat {
	case LogFormatConsole, LogFormatJSON:
		return logFormat, nil
	default:
		return LogFormatConsole, errors.New(`log format must be "console" or "json"`)
	}
}

// ParseLevel converts a level name to the minimum logged level.
// On an invalid value Info is used as the default, with an error.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New(`log level must be "debug", "info", "warn" or "error"`)
	}
}
