// Package logger provides the injected zap logger used by every service,
// enriched with the trace and span ids of the active span so log records can
// be correlated with traces.
package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// New builds the production logger for a service. The caller owns the logger
// lifecycle and must Sync it at shutdown.
func New(service string) (*zap.Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("service", service)), nil
}

func withSpan(ctx context.Context, fields []zap.Field) []zap.Field {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return fields
}

// Info logs at info level with trace correlation fields from ctx.
func Info(ctx context.Context, l *zap.Logger, msg string, fields ...zap.Field) {
	l.WithOptions(zap.AddCallerSkip(1)).Info(msg, withSpan(ctx, fields)...)
}

// Warn logs at warn level with trace correlation fields from ctx.
func Warn(ctx context.Context, l *zap.Logger, msg string, fields ...zap.Field) {
	l.WithOptions(zap.AddCallerSkip(1)).Warn(msg, withSpan(ctx, fields)...)
}

// Error logs at error level with trace correlation fields from ctx.
func Error(ctx context.Context, l *zap.Logger, msg string, fields ...zap.Field) {
	l.WithOptions(zap.AddCallerSkip(1)).Error(msg, withSpan(ctx, fields)...)
}
