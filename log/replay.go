package log

import (
	"context"
	"log/slog"
	"time"
)

// ParseLevel parses a slog level name such as "INFO" or "DEBUG+2".
// Unknown names map to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Replay hands msg to h as a slog record. A missing timestamp is replaced
// by the current time and a non-empty Module becomes a "module" attribute.
func Replay(ctx context.Context, h slog.Handler, msg LogMessageWire) error {
	level := ParseLevel(msg.Level)
	if !h.Enabled(ctx, level) {
		return nil
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	r := slog.NewRecord(ts, level, msg.Message, 0)
	if msg.Module != "" {
		r.AddAttrs(slog.String("module", msg.Module))
	}
	for _, a := range msg.Attrs {
		r.AddAttrs(a.Attr())
	}
	return h.Handle(ctx, r)
}

// ReplayBytes decodes data and replays it. Undecodable payloads are logged
// raw at warn level.
func ReplayBytes(ctx context.Context, h slog.Handler, module string, data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		r := slog.NewRecord(time.Now(), slog.LevelWarn, "undecodable module log", 0)
		r.AddAttrs(slog.String("module", module), slog.String("payload", string(data)))
		if h.Enabled(ctx, slog.LevelWarn) {
			return h.Handle(ctx, r)
		}
		return nil
	}
	if msg.Module == "" {
		msg.Module = module
	}
	return Replay(ctx, h, msg)
}
