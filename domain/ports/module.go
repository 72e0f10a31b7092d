package ports

import (
	"context"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// Module is an opened module.
type Module interface {
	// Path returns the path the module was opened from.
	Path() string

	// EntryPoint resolves an exported creation entry point by name.
	EntryPoint(name string) (entities.CreateSessionFunc, bool)

	// Close unloads the module. Roots created from it must be released
	// first.
	Close(ctx context.Context) error
}

// ModuleOpener opens modules of one kind.
type ModuleOpener interface {
	// Accepts reports whether the opener handles path.
	Accepts(path string) bool

	// Open loads the module at path.
	Open(ctx context.Context, path string) (Module, error)
}

// Resolver produces the candidate of one discovery step.
type Resolver interface {
	// Step names the discovery step.
	Step() entities.DiscoveryStep

	// Resolve returns the candidate, or false when the step has nothing
	// configured.
	Resolve(ctx context.Context) (entities.Candidate, bool, error)
}
