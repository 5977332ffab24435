package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a file-backed zap logger when debug is enabled.
// The TUI owns the terminal, so nothing is ever written to stdout or stderr.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if !cfg.Debug {
		return zap.NewNop(), nil
	}

	logPath := filepath.Join(cfg.DataDir(), "debug.log")

	// 0600 - the log contains conversation snippets
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log at %s: %w", logPath, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		zap.DebugLevel,
	)

	logger := zap.New(core, zap.AddCaller())
	logger.Info("debug logging started", zap.String("path", logPath))
	return logger, nil
}
