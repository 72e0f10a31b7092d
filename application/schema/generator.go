// Package schema generates JSON schemas for the documents sensecore reads
// and writes.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

var documents = map[string]func() any{
	"dispatch":    func() any { return &entities.DispatchRegistry{} },
	"load-report": func() any { return &entities.LoadReport{} },
}

// Names lists the documents For accepts.
func Names() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For returns the schema of the named document.
func For(name string) ([]byte, error) {
	doc, ok := documents[name]
	if !ok {
		return nil, &errors.SchemaError{Type: name, Err: fmt.Errorf("unknown document, want one of %v", Names())}
	}
	b, err := GenerateSchema(doc())
	if err != nil {
		return nil, &errors.SchemaError{Type: name, Err: err}
	}
	return b, nil
}

// DispatchSchema returns the schema of the dispatch file.
func DispatchSchema() ([]byte, error) {
	return For("dispatch")
}
