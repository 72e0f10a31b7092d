package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/infrastructure/dispatchstore"
	wasm "github.com/reglet-dev/sensecore/infrastructure/wazero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Loader discovers and loads the core module.
type Loader struct {
	cfg       loaderConfig
	openers   []ports.ModuleOpener
	resolvers []ports.Resolver
	cache     *moduleCache
}

// NewLoader creates a Loader. Without WithResolvers, discovery follows the
// override, compiled fallback (when enabled) and system steps configured
// through the environment and the dispatch file.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.store == nil {
		envCfg, err := ParseEnv(cfg.environ)
		if err != nil {
			return nil, err
		}
		cfg.store = dispatchstore.NewFileStore(dispatchstore.WithPath(envCfg.DispatchFile))
	}

	wasmOpts := []wasm.OpenerOption{wasm.WithLogger(cfg.logger)}
	if cfg.hostFuncs != nil {
		wasmOpts = append(wasmOpts, wasm.WithHostFunctions(cfg.hostFuncs))
	}
	wasmOpener, err := wasm.NewOpener(wasmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create wasm opener: %w", err)
	}

	l := &Loader{
		cfg:     cfg,
		openers: append(cfg.openers[:len(cfg.openers):len(cfg.openers)], NewNativeOpener(cfg.modules), wasmOpener),
	}
	l.resolvers = cfg.resolvers
	if l.resolvers == nil {
		l.resolvers = defaultResolvers(&l.cfg)
	}
	if cfg.cache {
		l.cache = newModuleCache(cfg.logger, cfg.metrics)
	}
	return l, nil
}

// Resolvers returns the discovery steps in order.
func (l *Loader) Resolvers() []ports.Resolver {
	return append([]ports.Resolver(nil), l.resolvers...)
}

// CreateSession bootstraps and returns the root, or nil when no
// candidate could be loaded.
func (l *Loader) CreateSession(ctx context.Context) *Root {
	root, _, err := l.Bootstrap(ctx)
	if err != nil {
		return nil
	}
	return root
}

// Bootstrap walks the discovery steps and returns the first root any
// candidate produces. When every step fails it returns a
// *errors.DiscoveryError listing the attempts. The report is returned in
// both cases.
func (l *Loader) Bootstrap(ctx context.Context) (*Root, *entities.LoadReport, error) {
	ctx, span := l.cfg.tracer.Start(ctx, "host.Bootstrap",
		trace.WithAttributes(attribute.String("sensecore.version", l.cfg.version.String())))
	defer span.End()

	start := time.Now()
	report := entities.NewLoadReport(start, l.cfg.version)
	var errs []error

	for _, r := range l.resolvers {
		if err := ctx.Err(); err != nil {
			l.cfg.metrics.bootstrap(false, time.Since(start))
			span.SetStatus(codes.Error, "cancelled")
			if stdErrors.Is(err, context.DeadlineExceeded) {
				err = &errors.TimeoutError{Err: err, Operation: "bootstrap", Duration: time.Since(start)}
			}
			return nil, report.Finish(time.Now()), fmt.Errorf("bootstrap: %w", err)
		}

		step := r.Step()
		cand, ok, err := r.Resolve(ctx)
		if err != nil {
			l.cfg.logger.DebugContext(ctx, "discovery step failed", "step", step, "error", err)
			report.Record(entities.DiscoveryAttempt{
				Candidate: entities.Candidate{Step: step},
				Error:     err.Error(),
				Status:    entities.StatusInitFailed,
			})
			l.cfg.metrics.attempt(step, false)
			errs = append(errs, err)
			continue
		}
		if !ok {
			l.cfg.logger.DebugContext(ctx, "discovery step not configured", "step", step)
			continue
		}

		l.cfg.logger.DebugContext(ctx, "trying core module", "step", step, "path", cand.Path, "source", cand.Source)
		root, attempt, err := l.load(ctx, cand)
		report.Record(attempt)
		l.cfg.metrics.attempt(step, err == nil)
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.String("step", string(step)),
			attribute.String("path", cand.Path),
			attribute.Int("status", int(attempt.Status)),
		))
		if err != nil {
			l.cfg.logger.DebugContext(ctx, "core module rejected", "step", step, "path", cand.Path, "error", err)
			errs = append(errs, err)
			continue
		}

		root.id = uuid.NewString()
		report.WithSelected(cand, root.id).Finish(time.Now())
		l.cfg.metrics.bootstrap(true, report.Duration)
		span.SetAttributes(
			attribute.String("sensecore.step", string(step)),
			attribute.String("sensecore.path", cand.Path),
			attribute.String("sensecore.root_id", root.id),
		)
		l.cfg.logger.InfoContext(ctx, "core module loaded",
			"step", step, "path", cand.Path, "options", cand.Options,
			"status", attempt.Status.String(), "cached", attempt.Cached, "duration", report.Duration)
		return root, report, nil
	}

	report.Finish(time.Now())
	derr := &errors.DiscoveryError{Attempts: report.Attempts, Errs: errs}
	l.cfg.metrics.bootstrap(false, report.Duration)
	span.RecordError(derr)
	span.SetStatus(codes.Error, "no core module found")
	l.cfg.logger.WarnContext(ctx, "no core module found", "attempts", len(report.Attempts))
	return nil, report, derr
}

// load opens cand, resolves the entry point and creates the root.
func (l *Loader) load(ctx context.Context, cand entities.Candidate) (*Root, entities.DiscoveryAttempt, error) {
	start := time.Now()
	attempt := entities.DiscoveryAttempt{Candidate: cand}
	fail := func(stage errors.LoadStage, status entities.Status, err error) (*Root, entities.DiscoveryAttempt, error) {
		lerr := &errors.LoadError{Err: err, Path: cand.Path, Stage: stage, Status: status}
		attempt.Error = lerr.Error()
		attempt.Status = status
		attempt.Duration = time.Since(start)
		return nil, attempt, lerr
	}

	mod, h, err := l.open(ctx, cand.Path)
	attempt.Cached = h.cached
	if err != nil {
		return fail(errors.StageOpen, entities.StatusInitFailed, err)
	}

	entry, ok := mod.EntryPoint(entities.EntryPointName)
	if !ok || entry == nil {
		h.reject(ctx)
		return fail(errors.StageResolve, entities.StatusFeatureUnsupported, errors.ErrEntryPointMissing)
	}

	root, status := entry(ctx, entities.SessionRequest{Version: l.cfg.version, Options: cand.Options})
	if status.IsError() {
		if root != nil {
			root.Release()
		}
		h.reject(ctx)
		return fail(errors.StageCreate, status, errors.FromStatus(entities.EntryPointName, status))
	}
	if root == nil {
		h.reject(ctx)
		return fail(errors.StageCreate, entities.StatusHandleInvalid, errors.ErrNilRoot)
	}

	attempt.Status = status
	attempt.Duration = time.Since(start)
	return &Root{Capability: root, candidate: cand, status: status, done: h.release}, attempt, nil
}

// moduleHandle gives an opened module back to the loader. release is
// called when the root is released; reject when the module produced no
// root, so a cached copy is dropped instead of kept.
type moduleHandle struct {
	release func(context.Context)
	reject  func(context.Context)
	cached  bool
}

// open returns the module at path and the handle that gives it back.
func (l *Loader) open(ctx context.Context, path string) (ports.Module, moduleHandle, error) {
	openFn := func() (ports.Module, error) {
		opener := l.openerFor(path)
		if opener == nil {
			return nil, errors.ErrNoOpener
		}
		return opener.Open(ctx, path)
	}

	if l.cache != nil {
		e, hit, err := l.cache.acquire(ctx, path, openFn)
		if err != nil {
			return nil, moduleHandle{}, err
		}
		return e.module, moduleHandle{
			release: func(ctx context.Context) { l.cache.release(ctx, e) },
			reject:  func(ctx context.Context) { l.cache.discard(ctx, path, e) },
			cached:  hit,
		}, nil
	}

	mod, err := openFn()
	if err != nil {
		return nil, moduleHandle{}, err
	}
	closeFn := func(ctx context.Context) {
		if err := mod.Close(ctx); err != nil {
			l.cfg.logger.WarnContext(ctx, "failed to close module", "path", path, "error", err)
		}
	}
	return mod, moduleHandle{release: closeFn, reject: closeFn}, nil
}

func (l *Loader) openerFor(path string) ports.ModuleOpener {
	for _, o := range l.openers {
		if o.Accepts(path) {
			return o
		}
	}
	return nil
}

// PurgeCache evicts every cached module. Modules without live roots are
// closed now, the others when their last root is released. It returns the
// number of evicted modules.
func (l *Loader) PurgeCache(ctx context.Context) int {
	if l.cache == nil {
		return 0
	}
	return l.cache.purge(ctx)
}

// CachedModules returns the number of modules held by the cache.
func (l *Loader) CachedModules() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.len()
}

// Close purges the module cache.
func (l *Loader) Close(ctx context.Context) error {
	l.PurgeCache(ctx)
	return nil
}

func (l *Loader) dispatchPath() string {
	if l.cfg.store == nil {
		return ""
	}
	return l.cfg.store.ConfigPath()
}
