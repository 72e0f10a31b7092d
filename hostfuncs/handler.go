package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
)

// HostFunc is a typed host function.
type HostFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler receives the guest's JSON request and returns JSON.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler adapts fn to a ByteHandler. An empty payload decodes as
// the zero request. Malformed requests yield a VALIDATION_ERROR response.
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return NewValidationError("malformed request: " + err.Error()).ToJSON(), nil
			}
		}
		out, err := json.Marshal(fn(ctx, req))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return out, nil
	}
}
