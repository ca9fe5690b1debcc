package lib

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleEncoder is for the jmerge CLI. Nothing parses these lines, they
// are read by whoever ran the merge.
var consoleEncoder = zapcore.EncoderConfig{
	TimeKey:        "T",
	LevelKey:       "L",
	NameKey:        "N",
	CallerKey:      zapcore.OmitKey,
	FunctionKey:    zapcore.OmitKey,
	MessageKey:     "M",
	StacktraceKey:  zapcore.OmitKey,
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// NewLogger builds the stderr logger used by a merge run. Debug enables the
// per-entry trace.
func NewLogger(debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    consoleEncoder,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
