package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldSessionID is the standardized key for the host session identifier.
	FieldSessionID = "session_id"
	// FieldInstance is the standardized key for the emitting process instance.
	FieldInstance = "instance"
)

// stampHandler appends a fixed set of attributes to every record after the
// caller's own attributes, so they survive WithGroup.
type stampHandler struct {
	base  slog.Handler
	stamp []slog.Attr
}

func newStampHandler(base slog.Handler, stamp ...slog.Attr) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	kept := make([]slog.Attr, 0, len(stamp))
	for _, a := range stamp {
		if !a.Equal(slog.Attr{}) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return base
	}
	return &stampHandler{base: base, stamp: kept}
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *stampHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.stamp...)
	return h.base.Handle(ctx, record)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{base: h.base.WithAttrs(attrs), stamp: h.stamp}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{base: h.base.WithGroup(name), stamp: h.stamp}
}

func sessionStamp(sessionID string, instance int) []slog.Attr {
	var out []slog.Attr
	if sessionID != "" {
		out = append(out, slog.String(FieldSessionID, sessionID))
	}
	if instance > 0 {
		out = append(out, slog.Int(FieldInstance, instance))
	}
	return out
}
