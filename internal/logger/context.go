package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWith stores a logger in the context.
func ContextWith(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts a logger from the context, zap.NewNop() if absent.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
