// Package logger provides structured logging functionality
// using the Uber zap logging library.
package logger

import (
	"errors"
	"os"

	"go.uber.org/zap"
)

// Log is a global SugaredLogger instance from the zap logging library.
// It defaults to a no-op logger so packages may log before Init runs;
// Init replaces it with a real one at the configured level.
var Log = zap.NewNop().Sugar()

// Init initializes the global logger at the given level.
// Output goes to stderr; stdout stays reserved for command output.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries to the output.
// It should be called once when the process shuts down.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}
