// Package xlog wires a single zap.Logger for the whole process. Every
// component package keeps a package-level *zap.SugaredLogger obtained from
// xlog.Named(component) instead of writing to stdout/stderr directly.
package xlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

// Configure (re)builds the process-wide logger. verbose enables debug level;
// human disables JSON encoding in favor of a console encoder for TTY use.
func Configure(verbose, human bool) error {
	mu.Lock()
	defer mu.Unlock()

	cfg := zap.NewProductionConfig()
	if human {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	base = l
	return nil
}

// Named returns a sugared logger scoped to component, building a no-op-safe
// default logger if Configure was never called (e.g. in tests).
func Named(component string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base, _ = zap.NewDevelopment()
	}
	return base.Named(component).Sugar()
}

// Sync flushes the base logger; call from main before process exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
