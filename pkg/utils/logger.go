package utils

import "go.uber.org/zap"

// LoggerName is attached to every entry written by the service logger.
const LoggerName = "reelmatch"

// NewLogger builds the service logger. Debug mode writes human-readable console output
// at debug level; otherwise entries are JSON at info level.
func NewLogger(debug bool) (*zap.Logger, error) {
	build := zap.NewProduction
	if debug {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return nil, err
	}
	return logger.Named(LoggerName), nil
}
