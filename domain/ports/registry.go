package ports

import "github.com/reglet-dev/sensecore/domain/entities"

// ModuleRegistry maps module paths to in-process creation entry points.
type ModuleRegistry interface {
	// Register publishes fn under path.
	Register(path string, fn entities.CreateSessionFunc) error

	// Lookup returns the entry point registered under path.
	Lookup(path string) (entities.CreateSessionFunc, bool)

	// List returns all registered paths.
	List() []string
}
