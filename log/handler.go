package log

import (
	"context"
	"log/slog"
	"slices"
)

// Sink receives encoded records.
type Sink func(ctx context.Context, msg LogMessageWire) error

type handlerConfig struct {
	level  slog.Leveler
	module string
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{level: slog.LevelInfo}
}

// HandlerOption configures a WireHandler.
type HandlerOption func(*handlerConfig)

// WithLevel sets the minimum level forwarded to the sink.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithModule stamps every record with a module name.
func WithModule(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.module = name
	}
}

// WireHandler is a slog.Handler that converts records to LogMessageWire and
// passes them to a Sink.
type WireHandler struct {
	sink   Sink
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*WireHandler)(nil)

// NewHandler creates a WireHandler writing to sink.
func NewHandler(sink Sink, opts ...HandlerOption) *WireHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WireHandler{sink: sink, cfg: cfg}
}

// Enabled implements slog.Handler.
func (h *WireHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle implements slog.Handler.
func (h *WireHandler) Handle(ctx context.Context, r slog.Record) error {
	prefix := ""
	for _, g := range h.groups {
		prefix = joinKey(prefix, g)
	}
	msg := ToWire(r, prefix, h.attrs...)
	msg.Module = h.cfg.module
	return h.sink(ctx, msg)
}

// WithAttrs implements slog.Handler. Attributes added inside a group are
// stored pre-grouped.
func (h *WireHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range attrs {
		for i := len(h.groups) - 1; i >= 0; i-- {
			a = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(a)}
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *WireHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

func (h *WireHandler) clone() *WireHandler {
	return &WireHandler{
		sink:   h.sink,
		cfg:    h.cfg,
		attrs:  slices.Clip(h.attrs),
		groups: slices.Clip(h.groups),
	}
}
