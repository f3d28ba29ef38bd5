package logger

import (
	"context"
	"log/slog"

	"documind/internal/jobctx"
)

type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := jobctx.JobID(ctx); id != "" {
		r.AddAttrs(slog.String("job_id", id))
	}
	if id := jobctx.UserID(ctx); id != "" {
		r.AddAttrs(slog.String("user_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
