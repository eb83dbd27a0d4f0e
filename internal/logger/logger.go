package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Lg = zap.NewNop()

// InitLogger builds the production logger at the given level, stores it in Lg
// and returns it. Unknown levels fall back to info.
func InitLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	Lg = logger
	return logger
}
