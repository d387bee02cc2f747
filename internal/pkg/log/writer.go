package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LevelWriter writes messages with the defined level to the logger.
type LevelWriter struct {
	logger *zapLogger
	level  zapcore.Level
}

func (w *LevelWriter) Write(p []byte) (n int, err error) {
	lines := strings.TrimRight(string(p), "\n")
	for _, line := range strings.Split(lines, "\n") {
		w.logger.logAtLevel(w.level, line)
	}
	return len(p), nil
}

// WriteNoErr without error, error is logged if it occurs.
func (w *LevelWriter) WriteNoErr(p []byte) {
	if _, err := w.Write(p); err != nil {
		w.logger.Errorf(`cannot write to log: %s`, err.Error())
	}
}

func (w *LevelWriter) WriteString(s string) (n int, err error) {
	return w.Write([]byte(s))
}

// WriteStringNoErr without error, error is logged if it occurs.
func (w *LevelWriter) WriteStringNoErr(s string) {
	w.WriteNoErr([]byte(s))
}

// WriteStringIndent writes indented message.
func (w *LevelWriter) WriteStringIndent(indent int, s string) {
	w.WriteStringNoErr(strings.Repeat("  ", indent) + s)
}

func (w *LevelWriter) Writef(template string, args ...any) {
	w.WriteStringNoErr(fmt.Sprintf(template, args...))
}

func (w *LevelWriter) Close() error {
	return w.logger.Sync()
}
