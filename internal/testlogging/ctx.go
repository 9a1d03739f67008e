// Package testlogging implements logger that writes to testing.T log.
package testlogging

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/kopia/repbytes/logging"
)

// Context returns a context with attached logger that emits all log entries to go testing.T log output.
func Context(tb testing.TB) context.Context {
	return ContextWithLevel(tb, zapcore.DebugLevel)
}

// ContextWithLevel returns a context with attached logger that emits all log entries with given log level or above.
func ContextWithLevel(tb testing.TB, level zapcore.Level) context.Context {
	return logging.WithLogger(context.Background(), func(module string) logging.Logger {
		return PrintfLevel(tb.Logf, "["+module+"] ", level)
	})
}
