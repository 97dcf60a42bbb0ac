package variants

import (
	"context"
	"log/slog"
	"time"
)

// ResolveLogEvent describes one resolution for logging.
type ResolveLogEvent struct {
	Definition string
	Selection  Selection
	Output     string
	// Matched holds the indexes of compound rules that applied.
	Matched  []int
	Duration time.Duration
	// Err joins guard failures. Resolution itself never fails.
	Err error
}

// ResolveLogger records resolve events.
type ResolveLogger interface {
	LogResolve(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolve implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolve(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolve(ResolveLogEvent) {}

// WithResolveLogger attaches a logger to the Resolver. Passing nil disables
// logging.
func WithResolveLogger(logger ResolveLogger) Option {
	return func(cfg *resolverConfig) {
		cfg.logger = logger
	}
}

// SlogLogger forwards resolve events to logger. Events with guard errors are
// logged at warn level, everything else at debug.
func SlogLogger(logger *slog.Logger) ResolveLogger {
	if logger == nil {
		return noopResolveLogger{}
	}
	return ResolveLoggerFunc(func(event ResolveLogEvent) {
		attrs := []slog.Attr{
			slog.String("definition", event.Definition),
			slog.Any("selection", event.Selection),
			slog.String("output", event.Output),
			slog.Any("matched", event.Matched),
			slog.Duration("duration", event.Duration),
		}
		level := slog.LevelDebug
		if event.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "variants resolved", attrs...)
	})
}
