// Package logger builds the zap logger shared by every service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger when production is true and a
// colourised development logger otherwise.
func New(production bool) (*zap.Logger, error) {
	var cfg zap.Config

	if production {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg.Build()
}

// Security logs an audit event under a fixed logger name so the events can be
// filtered out of the general stream.
func Security(log *zap.Logger, msg string, fields ...zap.Field) {
	log.Named("security").Info(msg, fields...)
}
