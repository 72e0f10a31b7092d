package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/hostfuncs"
	"github.com/reglet-dev/sensecore/internal/abi"
)

// Guest export names besides the creation entry point.
const (
	ExportQueryInstance   = abi.ExportQueryInstance
	ExportReleaseInstance = abi.ExportReleaseInstance
)

type openerConfig struct {
	logger         *slog.Logger
	registry       *hostfuncs.HandlerRegistry
	maxRequestSize uint32
	memoryPages    uint32
}

// OpenerOption configures an Opener.
type OpenerOption func(*openerConfig)

// WithLogger sets the logger for the opener and for replayed module logs.
func WithLogger(l *slog.Logger) OpenerOption {
	return func(c *openerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHostFunctions sets the host functions offered to modules.
// Default: hostfuncs.CoreBundle with panic recovery.
func WithHostFunctions(reg *hostfuncs.HandlerRegistry) OpenerOption {
	return func(c *openerConfig) {
		c.registry = reg
	}
}

// WithRequestLimit bounds host function requests and log messages.
func WithRequestLimit(size uint32) OpenerOption {
	return func(c *openerConfig) {
		c.maxRequestSize = size
	}
}

// WithMemoryLimitPages caps guest linear memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) OpenerOption {
	return func(c *openerConfig) {
		c.memoryPages = pages
	}
}

// Opener opens ".wasm" core modules.
type Opener struct {
	cfg openerConfig
}

var _ ports.ModuleOpener = (*Opener)(nil)

// NewOpener creates an Opener.
func NewOpener(opts ...OpenerOption) (*Opener, error) {
	cfg := openerConfig{logger: slog.Default(), maxRequestSize: DefaultMaxRequestSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		reg, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware(), hostfuncs.LoggingMiddleware(cfg.logger)),
			hostfuncs.WithBundle(hostfuncs.CoreBundle()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create default host functions: %w", err)
		}
		cfg.registry = reg
	}
	return &Opener{cfg: cfg}, nil
}

// Accepts reports whether path names a WASM binary.
func (o *Opener) Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wasm")
}

// Open reads and instantiates the module at path.
func (o *Opener) Open(ctx context.Context, path string) (ports.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return o.OpenBytes(ctx, path, data)
}

// OpenBytes instantiates a module from its binary. path is used for names
// and logging only.
func (o *Opener) OpenBytes(ctx context.Context, path string, data []byte) (*Module, error) {
	rtCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if o.cfg.memoryPages > 0 {
		rtCfg = rtCfg.WithMemoryLimitPages(o.cfg.memoryPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtCfg)

	fail := func(format string, err error) (*Module, error) {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf(format, err)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fail("instantiate wasi: %w", err)
	}
	if err := RegisterWithRuntime(ctx, rt, o.cfg.registry,
		WithAdapterLogger(o.cfg.logger),
		WithMaxRequestSize(o.cfg.maxRequestSize),
		WithCustomHandler(LogMessageHandler(o.cfg.logger, o.cfg.maxRequestSize)),
	); err != nil {
		return fail("register host functions: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fail("compile module: %w", err)
	}
	callCtx := WithModulePath(ctx, path)
	mod, err := rt.InstantiateModule(callCtx, compiled,
		wazero.NewModuleConfig().WithName(filepath.Base(path)).WithStartFunctions())
	if err != nil {
		return fail("instantiate module: %w", err)
	}
	if init := mod.ExportedFunction(abi.ExportInitialize); init != nil {
		if _, err := init.Call(callCtx); err != nil {
			return fail("call _initialize: %w", err)
		}
	}

	o.cfg.logger.DebugContext(ctx, "wasm module instantiated", "path", path, "exports", len(mod.ExportedFunctionDefinitions()))
	return &Module{path: path, rt: rt, mod: mod, logger: o.cfg.logger}, nil
}

// Module is an instantiated WASM core module. Calls into the guest are
// serialized.
type Module struct {
	rt     wazero.Runtime
	mod    api.Module
	logger *slog.Logger
	path   string
	mu     sync.Mutex
	closed atomic.Bool
}

var _ ports.Module = (*Module)(nil)

// Path implements ports.Module.
func (m *Module) Path() string {
	return m.path
}

// Exports returns the names of the exported functions, sorted.
func (m *Module) Exports() []string {
	defs := m.mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close implements ports.Module.
func (m *Module) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.rt.Close(ctx)
}

// EntryPoint implements ports.Module. Only exports with the creation
// signature (six i32 parameters, one i32 result) resolve.
func (m *Module) EntryPoint(name string) (entities.CreateSessionFunc, bool) {
	fn := m.mod.ExportedFunction(name)
	if fn == nil || !isEntrySignature(fn.Definition()) {
		return nil, false
	}
	return func(ctx context.Context, req entities.SessionRequest) (entities.Capability, entities.Status) {
		res, err := m.call(ctx, fn,
			api.EncodeU32(req.Version.Major),
			api.EncodeU32(req.Version.Minor),
			api.EncodeU32(req.Version.Build),
			0,
			api.EncodeU32(req.Options),
			0)
		if err != nil {
			m.logger.DebugContext(ctx, "wasm entry point failed", "path", m.path, "error", err)
			if ctx.Err() != nil {
				return nil, entities.StatusExecAborted
			}
			return nil, entities.StatusInitFailed
		}
		st := entities.Status(api.DecodeI32(res[0]))
		if st.IsError() {
			return nil, st
		}
		return &guestRoot{m: m}, st
	}, true
}

func isEntrySignature(def api.FunctionDefinition) bool {
	params, results := def.ParamTypes(), def.ResultTypes()
	if len(params) != 6 || len(results) != 1 || results[0] != api.ValueTypeI32 {
		return false
	}
	for _, p := range params {
		if p != api.ValueTypeI32 {
			return false
		}
	}
	return true
}

func (m *Module) call(ctx context.Context, fn api.Function, params ...uint64) ([]uint64, error) {
	if m.closed.Load() {
		return nil, fmt.Errorf("module %s is closed", m.path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn.Call(WithModulePath(ctx, m.path), params...)
}

func (m *Module) queryInstance(id entities.CUID) (uint32, bool) {
	fn := m.mod.ExportedFunction(ExportQueryInstance)
	if fn == nil {
		return 0, false
	}
	res, err := m.call(context.Background(), fn, api.EncodeU32(uint32(id)))
	if err != nil || len(res) == 0 {
		return 0, false
	}
	h := api.DecodeU32(res[0])
	return h, h != 0
}

func (m *Module) releaseInstance(handle uint32) {
	fn := m.mod.ExportedFunction(ExportReleaseInstance)
	if fn == nil {
		return
	}
	if _, err := m.call(context.Background(), fn, api.EncodeU32(handle)); err != nil {
		m.logger.Debug("wasm release_instance failed", "path", m.path, "handle", handle, "error", err)
	}
}

// guestRoot is the root object living inside a WASM module.
type guestRoot struct {
	m        *Module
	released atomic.Bool
}

func (r *guestRoot) QueryCapability(id entities.CUID) any {
	if id == entities.BaseCUID {
		return r
	}
	h, ok := r.m.queryInstance(id)
	if !ok {
		return nil
	}
	return &GuestFacet{ID: id, Handle: h, m: r.m}
}

func (r *guestRoot) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.m.releaseInstance(0)
	}
}

// GuestFacet is a facet implemented inside a WASM module, addressed by its
// instance handle.
type GuestFacet struct {
	m        *Module
	ID       entities.CUID
	Handle   uint32
	released atomic.Bool
}

// QueryCapability answers only the facet's own id.
func (f *GuestFacet) QueryCapability(id entities.CUID) any {
	if id == f.ID || id == entities.BaseCUID {
		return f
	}
	return nil
}

// Release hands the handle back to the guest.
func (f *GuestFacet) Release() {
	if f.released.CompareAndSwap(false, true) {
		f.m.releaseInstance(f.Handle)
	}
}
