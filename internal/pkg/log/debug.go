package log

import (
	"io"
	"strings"

	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/homewire/x10/internal/pkg/utils/ioutil"
)

// debugLogger implements the DebugLogger interface, logs are kept in a memory buffer.
type debugLogger struct {
	*zapLogger
	writer *ioutil.AtomicWriter
}

// NewDebugLogger returns logger for tests, each read clears the buffer.
func NewDebugLogger() DebugLogger {
	writer := ioutil.NewAtomicWriter()
	core := zapcore.NewCore(debugEncoder(), zapcore.AddSync(writer), DebugLevel)
	return &debugLogger{
		zapLogger: loggerFromZap(zap.New(core)),
		writer:    writer,
	}
}

func debugEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "  ",
	})
}

// ConnectTo allows writes to multiple targets.
func (l *debugLogger) ConnectTo(writer io.Writer) {
	l.writer.ConnectTo(writer)
}

func (l *debugLogger) Truncate() {
	l.writer.Truncate()
}

// AllMessages returns all messages and clears the buffer.
func (l *debugLogger) AllMessages() string {
	return l.writer.StringAndTruncate()
}

func (l *debugLogger) DebugMessages() string {
	return l.levelMessages("DEBUG")
}

func (l *debugLogger) InfoMessages() string {
	return l.levelMessages("INFO")
}

func (l *debugLogger) WarnMessages() string {
	return l.levelMessages("WARN")
}

func (l *debugLogger) ErrorMessages() string {
	return l.levelMessages("ERROR")
}

func (l *debugLogger) WarnAndErrorMessages() string {
	return l.levelMessages("WARN", "ERROR")
}

func (l *debugLogger) AssertMessages(t assert.TestingT, expected string, msgAndArgs ...any) bool {
	return wildcards.Assert(t, expected, l.AllMessages(), msgAndArgs...)
}

func (l *debugLogger) levelMessages(levels ...string) string {
	var out strings.Builder
	for _, line := range strings.Split(l.AllMessages(), "\n") {
		if line == "" {
			continue
		}
		for _, level := range levels {
			if strings.HasPrefix(line, level+"  ") {
				out.WriteString(line)
				out.WriteString("\n")
				break
			}
		}
	}
	return out.String()
}
