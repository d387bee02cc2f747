package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is the default implementation of the Logger interface.
// It is a wrapped zap.SugaredLogger with an optional message prefix.
type zapLogger struct {
	sugar  *zap.SugaredLogger
	prefix string
}

func loggerFromZap(l *zap.Logger) *zapLogger {
	return &zapLogger{sugar: l.Sugar()}
}

func (l *zapLogger) AddPrefix(prefix string) Logger {
	return &zapLogger{sugar: l.sugar, prefix: l.prefix + prefix}
}

func (l *zapLogger) Debug(args ...any) {
	l.sugar.Debug(l.message(fmt.Sprint(args...)))
}

func (l *zapLogger) Info(args ...any) {
	l.sugar.Info(l.message(fmt.Sprint(args...)))
}

func (l *zapLogger) Warn(args ...any) {
	l.sugar.Warn(l.message(fmt.Sprint(args...)))
}

func (l *zapLogger) Error(args ...any) {
	l.sugar.Error(l.message(fmt.Sprint(args...)))
}

func (l *zapLogger) Debugf(template string, args ...any) {
	l.sugar.Debugf(l.message(template), args...)
}

func (l *zapLogger) Infof(template string, args ...any) {
	l.sugar.Infof(l.message(template), args...)
}

func (l *zapLogger) Warnf(template string, args ...any) {
	l.sugar.Warnf(l.message(template), args...)
}

func (l *zapLogger) Errorf(template string, args ...any) {
	l.sugar.Errorf(l.message(template), args...)
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *zapLogger) DebugWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: DebugLevel}
}

func (l *zapLogger) InfoWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: InfoLevel}
}

func (l *zapLogger) WarnWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: WarnLevel}
}

func (l *zapLogger) ErrorWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: ErrorLevel}
}

func (l *zapLogger) logAtLevel(level zapcore.Level, args ...any) {
	switch level {
	case DebugLevel:
		l.Debug(args...)
	case InfoLevel:
		l.Info(args...)
	case WarnLevel:
		l.Warn(args...)
	case ErrorLevel:
		l.Error(args...)
	default:
		l.Info(args...)
	}
}

func (l *zapLogger) message(s string) string {
	if l.prefix == "" {
		return s
	}
	return l.prefix + " " + s
}
