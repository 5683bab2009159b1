package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

func FromCtx(ctx context.Context) Logger {
	return logger.FromCtx(ctx)
}

// CtxWithField returns a context whose logger carries the given structured field.
func CtxWithField(ctx context.Context, key string, value any) context.Context {
	return logger.CtxWithLogger(ctx, FromCtx(ctx).WithField(key, value))
}
