package hostfuncs

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a ByteHandler.
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption configures a HandlerRegistry under construction.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware turns handler panics into an INTERNAL_ERROR
// response so a faulty handler cannot crash the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = NewPanicError(r).ToJSON(), nil
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every invocation at debug level and failures at
// warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := "unknown"
			if hc, ok := ctx.(HostContext); ok {
				name = hc.FunctionName()
			}
			start := time.Now()
			resp, err := next(ctx, payload)
			if err != nil {
				logger.WarnContext(ctx, "host function failed", "function", name, "error", err)
				return resp, err
			}
			logger.DebugContext(ctx, "host function invoked",
				"function", name, "request_bytes", len(payload), "response_bytes", len(resp),
				"duration", time.Since(start))
			return resp, nil
		}
	}
}

// TimeoutMiddleware bounds each invocation's context by d.
func TimeoutMiddleware(d time.Duration) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if d <= 0 {
				return next(ctx, payload)
			}
			tctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(rebase(ctx, tctx), payload)
		}
	}
}
