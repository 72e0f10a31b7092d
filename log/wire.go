package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/sensecore/domain/errors"
)

// LogMessageWire is the JSON form of one log record.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Module    string        `json:"module,omitempty"`
}

// LogAttrWire is one attribute. Value holds the string form of the typed
// value named by Type.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"` // string, int64, uint64, bool, float64, time, duration, error, json, any
	Value string `json:"value"`
}

// Encode renders a record as wire JSON.
func Encode(msg LogMessageWire) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode parses wire JSON.
func Decode(data []byte) (LogMessageWire, error) {
	var msg LogMessageWire
	if err := json.Unmarshal(data, &msg); err != nil {
		return LogMessageWire{}, &errors.WireFormatError{Err: err, Operation: "decode", Type: "log message"}
	}
	return msg, nil
}

// ToWire converts a record. Attribute groups are flattened with dotted keys
// under prefix.
func ToWire(r slog.Record, prefix string, extra ...slog.Attr) LogMessageWire {
	msg := LogMessageWire{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	for _, a := range extra {
		msg.Attrs = appendAttr(msg.Attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, prefix, a)
		return true
	})
	return msg
}

func appendAttr(dst []LogAttrWire, prefix string, a slog.Attr) []LogAttrWire {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = joinKey(prefix, a.Key)
		}
		for _, g := range a.Value.Group() {
			dst = appendAttr(dst, p, g)
		}
		return dst
	}
	a.Key = joinKey(prefix, a.Key)
	return append(dst, toLogAttrWire(a))
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func toLogAttrWire(a slog.Attr) LogAttrWire {
	w := LogAttrWire{Key: a.Key}
	v := a.Value
	switch v.Kind() {
	case slog.KindString:
		w.Type, w.Value = "string", v.String()
	case slog.KindInt64:
		w.Type, w.Value = "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		w.Type, w.Value = "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		w.Type, w.Value = "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		w.Type, w.Value = "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		w.Type, w.Value = "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		w.Type, w.Value = "duration", v.Duration().String()
	default:
		w.Type, w.Value = anyToWire(v.Any())
	}
	return w
}

func anyToWire(v any) (string, string) {
	if v == nil {
		return "any", "<nil>"
	}
	if err, ok := v.(error); ok {
		return "error", err.Error()
	}
	if data, err := json.Marshal(v); err == nil {
		return "json", string(data)
	}
	return "any", fmt.Sprintf("%v", v)
}

// Attr converts a wire attribute back to a typed slog.Attr. Values that do
// not parse as their declared type are kept as strings.
func (w LogAttrWire) Attr() slog.Attr {
	switch w.Type {
	case "int64":
		if n, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, f)
		}
	case "time":
		if ts, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, ts)
		}
	case "duration":
		if d, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, d)
		}
	case "json":
		if json.Valid([]byte(w.Value)) {
			return slog.Any(w.Key, json.RawMessage(w.Value))
		}
	}
	return slog.String(w.Key, w.Value)
}
