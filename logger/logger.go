package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sitecrew/config"
)

// New builds the process logger. Development mode switches to the console
// encoder with caller and stack information.
func New(env config.LogEnv) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(env.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", env.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if env.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
