package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func stdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	consoleLevels := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		// Log debug, info -> if verbose output enabled
		if verbose {
			return l == DebugLevel || l == InfoLevel
		}

		// Log info only
		return l == InfoLevel
	})

	return zapcore.NewCore(consoleEncoder(verbose), zapcore.AddSync(stdout), consoleLevels)
}

func stderrCore(stderr io.Writer, verbose bool) zapcore.Core {
	return zapcore.NewCore(consoleEncoder(verbose), zapcore.AddSync(stderr), WarnLevel)
}

func consoleEncoder(verbose bool) zapcore.Encoder {
	// Prefix messages with the level only when verbose enabled
	levelKey := ""
	if verbose {
		levelKey = "level"
	}

	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         levelKey,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "\t",
	})
}
