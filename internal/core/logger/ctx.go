package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey int

const (
	ctxLoggerKey ctxKey = iota
	ctxFieldsKey
)

type ctxFields struct {
	mu     sync.Mutex
	fields []zap.Field
}

// NewFromCtx returns the logger stored in ctx, or the global one.
func NewFromCtx(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return globalLogger
	}
	if lg, ok := ctx.Value(ctxLoggerKey).(*zap.Logger); ok && lg != nil {
		return lg
	}
	return globalLogger
}

func WrapInCtx(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, lg)
}

// CtxWithAttrs returns a child context carrying a mutable field set.
func CtxWithAttrs(ctx context.Context, fields ...zap.Field) context.Context {
	holder := &ctxFields{fields: append([]zap.Field(nil), fields...)}
	return context.WithValue(ctx, ctxFieldsKey, holder)
}

// SetCtxFields appends fields to the set created by CtxWithAttrs.
// It is a no-op for a context without one.
func SetCtxFields(ctx context.Context, fields ...zap.Field) {
	holder, ok := ctx.Value(ctxFieldsKey).(*ctxFields)
	if !ok {
		return
	}
	holder.mu.Lock()
	holder.fields = append(holder.fields, fields...)
	holder.mu.Unlock()
}

func GetCtxFields(ctx context.Context) []zap.Field {
	holder, ok := ctx.Value(ctxFieldsKey).(*ctxFields)
	if !ok {
		return nil
	}
	holder.mu.Lock()
	defer holder.mu.Unlock()
	return append([]zap.Field(nil), holder.fields...)
}

func WithCtxFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	return append(GetCtxFields(ctx), fields...)
}

// FromCtx is NewFromCtx with the context fields attached.
func FromCtx(ctx context.Context) *zap.Logger {
	return NewFromCtx(ctx).With(GetCtxFields(ctx)...)
}
