package entities

// DispatchRegistry is the on-disk discovery configuration. Architecture
// keys are GOARCH names.
type DispatchRegistry struct {
	// Core is the absolute path of the system-installed core module.
	Core string `yaml:"core,omitempty" json:"core,omitempty" validate:"omitempty,abspath" jsonschema:"description=Absolute path of the system-installed core module"`

	// LocalRuntime maps an architecture to a local runtime override.
	LocalRuntime map[string]string `yaml:"local_runtime,omitempty" json:"local_runtime,omitempty" validate:"omitempty,dive,keys,alphanum,endkeys,required" jsonschema:"description=Per-architecture local runtime overrides"`
}

// LocalRuntimeFor returns the override registered for arch.
func (r *DispatchRegistry) LocalRuntimeFor(arch string) (string, bool) {
	if r == nil || r.LocalRuntime == nil {
		return "", false
	}
	path, ok := r.LocalRuntime[arch]
	return path, ok && path != ""
}

// DiscoveryStep names a stage of module discovery.
type DiscoveryStep string

const (
	StepOverride         DiscoveryStep = "override"
	StepCompiledFallback DiscoveryStep = "compiled_fallback"
	StepSystem           DiscoveryStep = "system"
)

// Creation options passed to the entry point.
const (
	OptionsSystem       uint32 = 0
	OptionsLocalRuntime uint32 = 1
)

// Candidate is a module path proposed by a discovery step.
type Candidate struct {
	Step    DiscoveryStep `json:"step"`
	Path    string        `json:"path"`
	Source  string        `json:"source,omitempty"`
	Options uint32        `json:"options"`
}
