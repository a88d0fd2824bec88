package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerName is the root name of every logger built by NewLogger.
const LoggerName = "ti4lookup"

// NewLogger returns a zap logger writing to stderr. When debug is true it uses the
// development config (console, debug level); otherwise the production config (JSON,
// info level) with ISO8601 timestamps and sampling off.
func NewLogger(debug bool, opts ...zap.Option) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	logger, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return logger.Named(LoggerName), nil
}
