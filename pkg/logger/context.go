package logger

import (
	"context"
	"log/slog"
)

type (
	documentKey struct{}
	runKey      struct{}
)

// WithDocument stores the path of the document being processed.
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, documentKey{}, path)
}

// WithRunID stores the identifier of the current run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runKey{}, id)
}

// DocumentExtractor adds the "document" attribute.
func DocumentExtractor(ctx context.Context) (slog.Attr, bool) {
	if p, ok := ctx.Value(documentKey{}).(string); ok && p != "" {
		return slog.String("document", p), true
	}
	return slog.Attr{}, false
}

// RunExtractor adds the "run_id" attribute.
func RunExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(runKey{}).(string); ok && id != "" {
		return slog.String("run_id", id), true
	}
	return slog.Attr{}, false
}
