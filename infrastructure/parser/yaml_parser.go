// Package parser reads and writes dispatch files.
package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
)

// YamlDispatchParser implements ports.DispatchParser for YAML.
type YamlDispatchParser struct{}

// NewYamlDispatchParser creates a new YamlDispatchParser.
func NewYamlDispatchParser() ports.DispatchParser {
	return &YamlDispatchParser{}
}

// Parse unmarshals a dispatch file. Unknown keys are rejected so typos in
// hand-edited files surface instead of silently disabling a step. An empty
// document yields an empty registry.
func (p *YamlDispatchParser) Parse(data []byte) (*entities.DispatchRegistry, error) {
	var reg entities.DispatchRegistry
	if len(bytes.TrimSpace(data)) == 0 {
		return &reg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("parse dispatch file: %w", err)
	}
	return &reg, nil
}

// Marshal renders reg as YAML.
func (p *YamlDispatchParser) Marshal(reg *entities.DispatchRegistry) ([]byte, error) {
	if reg == nil {
		reg = &entities.DispatchRegistry{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(reg); err != nil {
		return nil, fmt.Errorf("marshal dispatch file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal dispatch file: %w", err)
	}
	return buf.Bytes(), nil
}
