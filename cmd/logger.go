package cmd

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds a development logger, or a production logger that only
// reports warnings and errors when quiet is set.
func newLogger(quiet bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if quiet {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = config.Build()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
