package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/sensecore/hostfuncs"
	"github.com/reglet-dev/sensecore/internal/abi"
	sclog "github.com/reglet-dev/sensecore/log"
)

// HostModuleName is the import module core modules link against.
const HostModuleName = abi.HostModule

// DefaultMaxRequestSize bounds a single host function request.
const DefaultMaxRequestSize uint32 = 1 << 20

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	Logger *slog.Logger

	// ModuleName is the host module name (default: "sensecore_host").
	ModuleName string

	// CustomHandlers are raw functions that do not follow the packed
	// request/response convention.
	CustomHandlers []CustomHandler

	// MaxRequestSize limits requests read from guest memory.
	MaxRequestSize uint32
}

// CustomHandler is a raw host function.
type CustomHandler struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size read from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		if size > 0 {
			c.MaxRequestSize = size
		}
	}
}

// WithCustomHandler adds a raw host function.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// WithAdapterLogger sets the logger used for adapter failures.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Logger:         slog.Default(),
		ModuleName:     HostModuleName,
		MaxRequestSize: DefaultMaxRequestSize,
	}
}

// RegisterWithRuntime instantiates a host module exporting every handler of
// registry as func(i64) i64 plus the custom handlers.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	if registry != nil {
		for _, name := range registry.Names() {
			funcName := name
			builder.NewFunctionBuilder().
				WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
					stack[0] = handleRegistryCall(ctx, mod, stack[0], registry, funcName, cfg)
				}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
				Export(funcName)
		}
	}
	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

func handleRegistryCall(ctx context.Context, mod api.Module, packed uint64, registry *hostfuncs.HandlerRegistry, name string, cfg AdapterConfig) uint64 {
	logger := cfg.Logger.With("function", name, "module", ModulePath(ctx, mod))
	ptr, length := abi.UnpackPtrLen(packed)
	if length > cfg.MaxRequestSize {
		msg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, cfg.MaxRequestSize)
		logger.ErrorContext(ctx, "wazero: "+msg)
		return writeResponse(ctx, mod, logger, hostfuncs.NewValidationError(msg).ToJSON())
	}

	req, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.ErrorContext(ctx, "wazero: request out of guest memory bounds", "ptr", ptr, "len", length)
		return writeResponse(ctx, mod, logger, hostfuncs.NewInternalError("failed to read request from guest memory").ToJSON())
	}

	resp, err := registry.Invoke(ctx, name, req)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: handler invocation failed", "error", err)
		resp = hostfuncs.NewInternalError(err.Error()).ToJSON()
	}
	return writeResponse(ctx, mod, logger, resp)
}

// writeResponse copies data into memory allocated by the guest. It returns
// the packed location, or 0 when the guest cannot take it.
func writeResponse(ctx context.Context, mod api.Module, logger *slog.Logger, data []byte) uint64 {
	allocate := mod.ExportedFunction(abi.ExportAllocate)
	if allocate == nil {
		logger.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}
	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		logger.ErrorContext(ctx, "wazero: guest allocate failed", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: wasm32 pointers
	if ptr == 0 && len(data) > 0 {
		logger.ErrorContext(ctx, "wazero: guest allocate returned null")
		return 0
	}
	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}
	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest memory
}

// LogMessageHandler returns log_message(i64), which decodes a guest log
// record and replays it into logger's handler.
func LogMessageHandler(logger *slog.Logger, maxSize uint32) CustomHandler {
	if maxSize == 0 {
		maxSize = DefaultMaxRequestSize
	}
	return CustomHandler{
		Name: abi.ImportLogMessage,
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			ptr, length := abi.UnpackPtrLen(stack[0])
			module := ModulePath(ctx, mod)
			if length > maxSize {
				logger.WarnContext(ctx, "module log message too large", "module", module, "len", length)
				return
			}
			data, ok := mod.Memory().Read(ptr, length)
			if !ok {
				logger.WarnContext(ctx, "module log message out of bounds", "module", module)
				return
			}
			if err := sclog.ReplayBytes(ctx, logger.Handler(), module, data); err != nil {
				logger.WarnContext(ctx, "module log replay failed", "module", module, "error", err)
			}
		}),
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
	}
}
