// Package ctxlogger carries slog attributes inside a context so that every
// log line emitted while handling a request shares the same identifiers.
package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context whose log records will additionally carry attr.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if attrs, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		next := make([]slog.Attr, 0, len(attrs)+1)
		next = append(next, attrs...)
		next = append(next, attr)
		return context.WithValue(parent, ctxKey{}, next)
	}

	return context.WithValue(parent, ctxKey{}, []slog.Attr{attr})
}
