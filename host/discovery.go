package host

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
	"github.com/reglet-dev/sensecore/domain/ports"
)

// EnvPrefix prefixes every discovery environment key.
const EnvPrefix = "SENSECORE_"

// EnvConfig holds the discovery keys read from the environment.
type EnvConfig struct {
	// Core is the path of the system-installed core module. It takes
	// precedence over the dispatch file.
	Core string `env:"CORE"`

	// DispatchFile is the path of the dispatch file.
	DispatchFile string `env:"DISPATCH_FILE" envDefault:"/etc/sensecore/dispatch.yaml"`
}

type localRuntimeEnv struct {
	LocalRuntime string `env:"LOCAL_RUNTIME"`
}

// ParseEnv reads EnvConfig from environ, or from the process environment
// when environ is nil.
func ParseEnv(environ map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return cfg, &errors.ConfigError{Err: fmt.Errorf("parse env: %w", err), Field: "environment"}
	}
	return cfg, nil
}

// LocalRuntimeKey returns the environment key of the local runtime
// override for arch.
func LocalRuntimeKey(arch string) string {
	return EnvPrefix + strings.ToUpper(arch) + "_LOCAL_RUNTIME"
}

func parseLocalRuntime(environ map[string]string, arch string) (string, error) {
	var cfg localRuntimeEnv
	prefix := EnvPrefix + strings.ToUpper(arch) + "_"
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix, Environment: environ}); err != nil {
		return "", &errors.ConfigError{Err: fmt.Errorf("parse env: %w", err), Field: LocalRuntimeKey(arch)}
	}
	return cfg.LocalRuntime, nil
}

// RelativeSuffix is the location of the core module below a runtime
// root.
func RelativeSuffix(arch, library string) string {
	return filepath.Join("bin", arch, library)
}

// LocalRuntimePath turns a local runtime override into a module path.
// Values starting with "." are taken relative to the directory of the
// running executable and name the directory holding library. Other values
// are runtime roots and get RelativeSuffix appended.
func LocalRuntimePath(value, arch, library string, executable func() (string, error)) (string, error) {
	if strings.HasPrefix(value, ".") {
		exe, err := executable()
		if err != nil {
			return "", fmt.Errorf("locate executable: %w", err)
		}
		return filepath.Join(filepath.Dir(exe), value, library), nil
	}
	return filepath.Join(value, RelativeSuffix(arch, library)), nil
}

// OverrideResolver resolves the local runtime override. The environment
// key wins over the dispatch file entry.
type OverrideResolver struct {
	Environ    map[string]string
	Store      ports.DispatchStore
	Arch       string
	Library    string
	Executable func() (string, error)
}

var _ ports.Resolver = (*OverrideResolver)(nil)

// Step implements ports.Resolver.
func (r *OverrideResolver) Step() entities.DiscoveryStep {
	return entities.StepOverride
}

// Resolve implements ports.Resolver.
func (r *OverrideResolver) Resolve(_ context.Context) (entities.Candidate, bool, error) {
	value, err := parseLocalRuntime(r.Environ, r.Arch)
	if err != nil {
		return entities.Candidate{}, false, err
	}
	source := "env:" + LocalRuntimeKey(r.Arch)
	if value == "" && r.Store != nil {
		reg, err := r.Store.Load()
		if err != nil {
			return entities.Candidate{}, false, &errors.ConfigError{Err: err, Field: "local_runtime"}
		}
		value, _ = reg.LocalRuntimeFor(r.Arch)
		source = "dispatch:" + r.Store.ConfigPath()
	}
	if value == "" {
		return entities.Candidate{}, false, nil
	}
	path, err := LocalRuntimePath(value, r.Arch, r.Library, r.Executable)
	if err != nil {
		return entities.Candidate{}, false, err
	}
	return entities.Candidate{
		Step:    entities.StepOverride,
		Path:    path,
		Source:  source,
		Options: entities.OptionsLocalRuntime,
	}, true, nil
}

// CompiledFallbackResolver looks for the module two directories above the
// directory this package was built from.
type CompiledFallbackResolver struct {
	// SourceDir overrides the build directory.
	SourceDir string
	Arch      string
	Library   string
}

var _ ports.Resolver = (*CompiledFallbackResolver)(nil)

// Step implements ports.Resolver.
func (r *CompiledFallbackResolver) Step() entities.DiscoveryStep {
	return entities.StepCompiledFallback
}

// Resolve implements ports.Resolver.
func (r *CompiledFallbackResolver) Resolve(_ context.Context) (entities.Candidate, bool, error) {
	dir := r.SourceDir
	if dir == "" {
		dir = compiledDir()
	}
	if dir == "" {
		return entities.Candidate{}, false, nil
	}
	return entities.Candidate{
		Step:    entities.StepCompiledFallback,
		Path:    filepath.Join(dir, "..", "..", RelativeSuffix(r.Arch, r.Library)),
		Source:  "build:" + dir,
		Options: entities.OptionsLocalRuntime,
	}, true, nil
}

func compiledDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}

// SystemResolver resolves the system-installed core module from
// SENSECORE_CORE or the core entry of the dispatch file.
type SystemResolver struct {
	Environ map[string]string
	Store   ports.DispatchStore
}

var _ ports.Resolver = (*SystemResolver)(nil)

// Step implements ports.Resolver.
func (r *SystemResolver) Step() entities.DiscoveryStep {
	return entities.StepSystem
}

// Resolve implements ports.Resolver.
func (r *SystemResolver) Resolve(_ context.Context) (entities.Candidate, bool, error) {
	cfg, err := ParseEnv(r.Environ)
	if err != nil {
		return entities.Candidate{}, false, err
	}
	if cfg.Core != "" {
		return entities.Candidate{
			Step:    entities.StepSystem,
			Path:    cfg.Core,
			Source:  "env:" + EnvPrefix + "CORE",
			Options: entities.OptionsSystem,
		}, true, nil
	}
	if r.Store == nil {
		return entities.Candidate{}, false, nil
	}
	reg, err := r.Store.Load()
	if err != nil {
		return entities.Candidate{}, false, &errors.ConfigError{Err: err, Field: "core"}
	}
	if reg.Core == "" {
		return entities.Candidate{}, false, nil
	}
	return entities.Candidate{
		Step:    entities.StepSystem,
		Path:    reg.Core,
		Source:  "dispatch:" + r.Store.ConfigPath(),
		Options: entities.OptionsSystem,
	}, true, nil
}

func defaultResolvers(cfg *loaderConfig) []ports.Resolver {
	resolvers := []ports.Resolver{&OverrideResolver{
		Environ:    cfg.environ,
		Store:      cfg.store,
		Arch:       cfg.arch,
		Library:    cfg.library,
		Executable: cfg.executable,
	}}
	if cfg.compiledFallback {
		resolvers = append(resolvers, &CompiledFallbackResolver{Arch: cfg.arch, Library: cfg.library})
	}
	return append(resolvers, &SystemResolver{Environ: cfg.environ, Store: cfg.store})
}
