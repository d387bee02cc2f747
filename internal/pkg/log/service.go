package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewServiceLogger creates a logger for a long running service.
// The JSON format is meant for log collectors, the console format for humans.
func NewServiceLogger(out io.Writer, minLevel zapcore.Level, format LogFormat) Logger {
	var encoder zapcore.Encoder
	switch format {
	case LogFormatJSON:
		encoder = zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:     "time",
			LevelKey:    "level",
			MessageKey:  "message",
			EncodeLevel: zapcore.LowercaseLevelEncoder,
			EncodeTime:  zapcore.ISO8601TimeEncoder,
		})
	default:
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "ts",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			ConsoleSeparator: "\t",
		})
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), minLevel)
	return loggerFromZap(zap.New(core))
}
