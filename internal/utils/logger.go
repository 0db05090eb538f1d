package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper over zap so call sites don't depend on its config.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a JSON logger at the given level. An empty filePath logs
// to stderr; otherwise the file is appended to.
func NewLogger(filePath, level string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if filePath != "" {
		cfg.OutputPaths = []string{filePath}
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{z: z}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{z: zap.NewNop()}
}

// NewLoggerFrom wraps an existing zap logger (e.g. zaptest/observer in tests).
func NewLoggerFrom(z *zap.Logger) *Logger {
	return &Logger{z: z}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a child logger that always carries fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Close flushes buffered entries.
func (l *Logger) Close() {
	_ = l.z.Sync()
}
