package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects where request lifecycle events are written.
type LoggerConfig struct {
	// LogFile is appended to in addition to stderr; empty disables the file sink.
	LogFile string
	Level   string
	Console bool
}

// NewLogger builds a zap logger writing JSON lines to stderr and the log file.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Console {
		zcfg.Encoding = "console"
	}
	zcfg.OutputPaths = []string{"stderr"}
	if cfg.LogFile != "" {
		// zap opens file sinks in append mode
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.LogFile)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
