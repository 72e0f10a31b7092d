package sensecore

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/host"
	"github.com/reglet-dev/sensecore/infrastructure/dispatchstore"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// Config is a declarative form of the common loader options, for programs
// that keep their settings in a generic map or file.
type Config struct {
	DispatchFile     string `json:"dispatch_file,omitempty" validate:"omitempty,filepath"`
	Arch             string `json:"arch,omitempty" validate:"omitempty,alphanum"`
	Library          string `json:"library,omitempty" validate:"omitempty,excludesall=/\\"`
	Version          string `json:"version,omitempty"`
	CompiledFallback bool   `json:"compiled_fallback,omitempty"`
	ModuleCache      bool   `json:"module_cache,omitempty"`
}

// ConfigFromMap decodes and validates a Config from a generic map.
// It first marshals the map to JSON, then unmarshals it into Config,
// and finally runs the validator on the struct.
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return cfg, fmt.Errorf("failed to marshal config map: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the struct rules and the version syntax.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Version != "" {
		if _, err := entities.ParseVersion(c.Version); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// LoaderOptions converts c into loader options.
func (c Config) LoaderOptions() ([]host.LoaderOption, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []host.LoaderOption{
		host.WithArch(c.Arch),
		host.WithLibraryName(c.Library),
		host.WithCompiledFallback(c.CompiledFallback),
		host.WithModuleCache(c.ModuleCache),
	}
	if c.DispatchFile != "" {
		opts = append(opts, host.WithDispatchStore(dispatchstore.NewFileStore(dispatchstore.WithPath(c.DispatchFile))))
	}
	if c.Version != "" {
		v, _ := entities.ParseVersion(c.Version)
		opts = append(opts, host.WithVersion(v))
	}
	return opts, nil
}
