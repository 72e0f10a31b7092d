package host

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/host/registry"
	"github.com/reglet-dev/sensecore/hostfuncs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLibraryName is the core module file name appended to local
// runtime directories.
const DefaultLibraryName = "libsensecore.wasm"

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	logger           *slog.Logger
	tracer           trace.Tracer
	version          entities.Version
	resolvers        []ports.Resolver
	openers          []ports.ModuleOpener
	modules          ports.ModuleRegistry
	hostFuncs        *hostfuncs.HandlerRegistry
	environ          map[string]string
	arch             string
	library          string
	executable       func() (string, error)
	store            ports.DispatchStore
	compiledFallback bool
	cache            bool
	metrics          *Metrics
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		logger:     slog.Default(),
		tracer:     otel.Tracer("github.com/reglet-dev/sensecore/host"),
		version:    entities.SDKVersion,
		modules:    registry.Default,
		arch:       runtime.GOARCH,
		library:    DefaultLibraryName,
		executable: os.Executable,
	}
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithLogger sets the loader logger. Discovery steps log at debug, the
// chosen module at info and exhaustion at warn.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for bootstrap spans.
func WithTracer(t trace.Tracer) LoaderOption {
	return func(c *loaderConfig) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithVersion sets the interface version requested from entry points.
func WithVersion(v entities.Version) LoaderOption {
	return func(c *loaderConfig) {
		c.version = v
	}
}

// WithResolvers replaces the discovery steps. The default steps are built
// from the environment and the dispatch store.
func WithResolvers(r ...ports.Resolver) LoaderOption {
	return func(c *loaderConfig) {
		c.resolvers = append([]ports.Resolver(nil), r...)
	}
}

// WithOpeners adds module openers. They are consulted before the built-in
// native and wasm openers.
func WithOpeners(o ...ports.ModuleOpener) LoaderOption {
	return func(c *loaderConfig) {
		c.openers = append(c.openers, o...)
	}
}

// WithModuleRegistry sets the registry of native modules.
// Default: registry.Default.
func WithModuleRegistry(r ports.ModuleRegistry) LoaderOption {
	return func(c *loaderConfig) {
		if r != nil {
			c.modules = r
		}
	}
}

// WithHostFunctions sets the host functions offered to wasm modules.
func WithHostFunctions(r *hostfuncs.HandlerRegistry) LoaderOption {
	return func(c *loaderConfig) {
		c.hostFuncs = r
	}
}

// WithEnvironment replaces the process environment for discovery keys.
func WithEnvironment(env map[string]string) LoaderOption {
	return func(c *loaderConfig) {
		c.environ = env
	}
}

// WithArch sets the architecture key used for local runtime lookups.
// Default: runtime.GOARCH.
func WithArch(arch string) LoaderOption {
	return func(c *loaderConfig) {
		if arch != "" {
			c.arch = arch
		}
	}
}

// WithLibraryName sets the module file name appended to local runtime
// directories.
func WithLibraryName(name string) LoaderOption {
	return func(c *loaderConfig) {
		if name != "" {
			c.library = name
		}
	}
}

// WithExecutable sets the function reporting the running executable path.
// Relative local runtime overrides are resolved against its directory.
func WithExecutable(fn func() (string, error)) LoaderOption {
	return func(c *loaderConfig) {
		if fn != nil {
			c.executable = fn
		}
	}
}

// WithDispatchStore sets the dispatch file store. Default: a file store at
// SENSECORE_DISPATCH_FILE or /etc/sensecore/dispatch.yaml.
func WithDispatchStore(s ports.DispatchStore) LoaderOption {
	return func(c *loaderConfig) {
		c.store = s
	}
}

// WithCompiledFallback enables the step that looks for the module relative
// to the loader's build location.
func WithCompiledFallback(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.compiledFallback = enabled
	}
}

// WithModuleCache keeps successfully opened modules open across
// bootstraps.
func WithModuleCache(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.cache = enabled
	}
}

// WithMetrics records loader metrics.
func WithMetrics(m *Metrics) LoaderOption {
	return func(c *loaderConfig) {
		c.metrics = m
	}
}
