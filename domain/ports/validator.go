package ports

import "github.com/reglet-dev/sensecore/domain/entities"

// DispatchValidator validates dispatch documents.
type DispatchValidator interface {
	// Validate checks reg against its struct rules and JSON schema.
	Validate(reg *entities.DispatchRegistry) (*entities.ValidationResult, error)
}
