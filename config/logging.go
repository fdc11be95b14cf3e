package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDebugLogger returns a JSON file logger writing to <configDir>/debug.log
// when AGENTREPL_DEBUG is set, and a no-op logger otherwise. Logging never
// goes to stdout, which belongs to the conversation.
func NewDebugLogger(configDir string) (*zap.Logger, error) {
	if !CheckDebug() {
		return zap.NewNop(), nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	logPath := filepath.Join(configDir, "debug.log")

	// Create the log with secure permissions first; it may contain prompts.
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log at %s: %w", logPath, err)
	}
	f.Close()

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize debug logger: %w", err)
	}

	logger.Info("debug logging started",
		zap.String("env", os.Getenv("AGENTREPL_DEBUG")),
		zap.String("path", logPath),
	)
	return logger, nil
}
