package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the logger used for loss-diff reporting. With
// verbose false the logger swallows everything.
func NewLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
