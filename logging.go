package main

import (
	"strings"

	"github.com/esimov/ascii-particles/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the development logger. The terminal is owned by the frame
// loop, so without a log file every entry is discarded.
func newLogger(p config.LogConfig) (*zap.SugaredLogger, error) {
	if p.File == "" {
		return zap.NewNop().Sugar(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	switch strings.ToLower(p.Level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	cfg.EncoderConfig.StacktraceKey = ""
	if !p.ShowCaller {
		cfg.EncoderConfig.CallerKey = ""
	}
	cfg.OutputPaths = []string{p.File}
	cfg.ErrorOutputPaths = []string{p.File}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger.Sugar(), nil
}
