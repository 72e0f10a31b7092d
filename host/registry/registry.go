// Package registry holds the in-process module registry. Native modules
// publish their creation entry point under a path, and the loader opens
// paths that no other opener accepts through it.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates). Disable only for testing or hot-reloading.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry implements ports.ModuleRegistry.
type Registry struct {
	config  registryConfig
	modules sync.Map // map[string]entities.CreateSessionFunc
}

var _ ports.ModuleRegistry = (*Registry)(nil)

// Default is the process-wide registry used by loaders without an explicit one.
var Default = NewRegistry()

// NewRegistry creates a new Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// Register publishes fn under path. Paths are compared after filepath.Clean.
func (r *Registry) Register(path string, fn entities.CreateSessionFunc) error {
	if path == "" {
		return fmt.Errorf("module path is empty")
	}
	if fn == nil {
		return fmt.Errorf("module %q has no entry point", path)
	}
	key := filepath.Clean(path)
	if !r.config.strictMode {
		r.modules.Store(key, fn)
		return nil
	}
	if _, loaded := r.modules.LoadOrStore(key, fn); loaded {
		return fmt.Errorf("module %q already registered", key)
	}
	return nil
}

// Unregister removes path. It reports whether path was registered.
func (r *Registry) Unregister(path string) bool {
	_, loaded := r.modules.LoadAndDelete(filepath.Clean(path))
	return loaded
}

// Lookup returns the entry point registered under path.
func (r *Registry) Lookup(path string) (entities.CreateSessionFunc, bool) {
	if path == "" {
		return nil, false
	}
	v, ok := r.modules.Load(filepath.Clean(path))
	if !ok {
		return nil, false
	}
	return v.(entities.CreateSessionFunc), true
}

// List returns all registered paths, sorted.
func (r *Registry) List() []string {
	var keys []string
	r.modules.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
