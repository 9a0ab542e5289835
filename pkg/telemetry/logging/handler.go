package logging

import (
	"context"
	"log/slog"
)

// contextHandler adds context fields to every record and scrubs attributes
// before they reach the wrapped handler.
type contextHandler struct {
	next     slog.Handler
	scrubber *Scrubber
}

func newContextHandler(next slog.Handler, scrubber *Scrubber) *contextHandler {
	return &contextHandler{next: next, scrubber: scrubber}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.scrubber.ScrubString(r.Message), r.PC)
	out.AddAttrs(extractContextFields(ctx)...)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.scrubber.ScrubAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.scrubber.ScrubAttr(a)
	}
	return &contextHandler{next: h.next.WithAttrs(scrubbed), scrubber: h.scrubber}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), scrubber: h.scrubber}
}
