//go:build !linux
// +build !linux

package executor

import (
	"context"

	"go.uber.org/zap"
)

// StubInhibitor is a placeholder for platforms without an inhibitor (macOS, Windows, BSD)
type StubInhibitor struct {
	logger *zap.Logger
}

// NewIdleInhibitor creates a stub inhibitor for unsupported platforms
func NewIdleInhibitor(logger *zap.Logger) *StubInhibitor {
	logger.Warn("Idle inhibition is not implemented for this platform, display.keep_awake has no effect")
	return &StubInhibitor{logger: logger}
}

// Inhibit does nothing; the system's idle policy stays in effect
func (e *StubInhibitor) Inhibit(context.Context) error { return nil }

// Release does nothing
func (e *StubInhibitor) Release(context.Context) error { return nil }
