package ports

import "github.com/reglet-dev/sensecore/domain/entities"

// DispatchStore provides persistence for the dispatch file.
type DispatchStore interface {
	// Load reads the dispatch document.
	// Returns an empty DispatchRegistry (not error) if the file does not exist.
	Load() (*entities.DispatchRegistry, error)

	// Save persists the dispatch document.
	Save(reg *entities.DispatchRegistry) error

	// ConfigPath returns the path to the backing file (for user messaging).
	ConfigPath() string
}
