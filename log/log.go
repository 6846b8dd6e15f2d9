package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init configures the process-wide logger. Call once at startup, before
// anything logs through L.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	logger = l
	return nil
}

// L returns the process-wide logger. Before Init it is a no-op logger, so
// library code and tests can log unconditionally.
func L() *zap.Logger {
	return logger
}

func Sync() {
	_ = logger.Sync()
}
