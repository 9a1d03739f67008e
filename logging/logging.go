// Package logging provides module loggers that are carried by a context.
package logging

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger used by all modules.
type Logger = *zap.SugaredLogger

// LoggerFactory returns a logger for the given module.
type LoggerFactory func(module string) Logger

type contextKey string

const loggerFactoryKey contextKey = "logger"

// WithLogger returns a derived context with associated logger factory.
func WithLogger(ctx context.Context, l LoggerFactory) context.Context {
	if l == nil {
		l = getNullLogger
	}

	return context.WithValue(ctx, loggerFactoryKey, l)
}

// Module returns a function that returns a logger for the given module using the factory in the context.
func Module(module string) func(ctx context.Context) Logger {
	return func(ctx context.Context) Logger {
		if l, ok := ctx.Value(loggerFactoryKey).(LoggerFactory); ok {
			return l(module)
		}

		return NullLogger()
	}
}

// NullLogger returns a logger that discards all messages.
func NullLogger() Logger {
	return zap.NewNop().Sugar()
}

func getNullLogger(module string) Logger {
	return NullLogger()
}

// ToWriter returns a LoggerFactory that writes plain messages to the provided writer.
func ToWriter(w io.Writer) LoggerFactory {
	return func(module string) Logger {
		return zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				MessageKey: "m",
				LineEnding: zapcore.DefaultLineEnding,
			}),
			zapcore.AddSync(w),
			zapcore.DebugLevel,
		)).Sugar()
	}
}
