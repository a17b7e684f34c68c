package logging

import (
	"context"
	"log/slog"
)

// AttrSource reports attributes that change while the extension runs, such
// as the world the player is in. session.Context implements it.
type AttrSource interface {
	Attrs() []slog.Attr
}

// AttrFunc adapts a plain function to an AttrSource.
type AttrFunc func() []slog.Attr

// Attrs calls f.
func (f AttrFunc) Attrs() []slog.Attr { return f() }

// ContextHandler reads its source on every record and adds the attributes
// the record does not already carry. A "world" passed at the call site or
// bound with With wins over the source's value.
type ContextHandler struct {
	inner  slog.Handler
	source AttrSource
	bound  map[string]struct{}
}

// NewContextHandler wraps inner. A nil source adds nothing.
func NewContextHandler(inner slog.Handler, source AttrSource) *ContextHandler {
	return &ContextHandler{inner: inner, source: source}
}

// Enabled delegates to the inner handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds the missing source attributes and delegates.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source == nil {
		return h.inner.Handle(ctx, r)
	}

	var present map[string]struct{}
	if r.NumAttrs() > 0 {
		present = make(map[string]struct{}, r.NumAttrs())
		r.Attrs(func(a slog.Attr) bool {
			present[a.Key] = struct{}{}
			return true
		})
	}
	for _, a := range h.source.Attrs() {
		if _, ok := present[a.Key]; ok {
			continue
		}
		if _, ok := h.bound[a.Key]; ok {
			continue
		}
		r.AddAttrs(a)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs remembers the bound keys so the source does not repeat them.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]struct{}, len(h.bound)+len(attrs))
	for k := range h.bound {
		bound[k] = struct{}{}
	}
	for _, a := range attrs {
		bound[a.Key] = struct{}{}
	}
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), source: h.source, bound: bound}
}

// WithGroup opens the group on the inner handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), source: h.source, bound: h.bound}
}
