package ports

import "github.com/reglet-dev/sensecore/domain/entities"

// DispatchParser converts between dispatch file bytes and the dispatch
// document.
type DispatchParser interface {
	// Parse unmarshals YAML bytes into a DispatchRegistry.
	Parse(data []byte) (*entities.DispatchRegistry, error)

	// Marshal renders a DispatchRegistry as YAML.
	Marshal(reg *entities.DispatchRegistry) ([]byte, error)
}
