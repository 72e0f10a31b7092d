// Package validation checks dispatch documents against their struct rules
// and their JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/sensecore/application/schema"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/infrastructure/parser"
)

const schemaURL = "sensecore://dispatch.json"

// DispatchValidator implements ports.DispatchValidator.
type DispatchValidator struct {
	validate *validator.Validate
	schema   *jsonschema.Schema
	parser   ports.DispatchParser
}

var _ ports.DispatchValidator = (*DispatchValidator)(nil)

// NewDispatchValidator compiles the dispatch schema and prepares the
// struct validator.
func NewDispatchValidator() (*DispatchValidator, error) {
	raw, err := schema.DispatchSchema()
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add dispatch schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dispatch schema: %w", err)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register abspath rule: %w", err)
	}

	return &DispatchValidator{validate: v, schema: sch, parser: parser.NewYamlDispatchParser()}, nil
}

// Validate checks reg against the schema and the struct rules.
func (v *DispatchValidator) Validate(reg *entities.DispatchRegistry) (*entities.ValidationResult, error) {
	if reg == nil {
		return nil, fmt.Errorf("dispatch document is nil")
	}
	result := &entities.ValidationResult{Valid: true}

	b, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	v.checkSchema(doc, result)
	v.checkStruct(reg, result)
	return result, nil
}

// ValidateBytes checks a YAML dispatch file. Schema violations are
// reported before the struct rules run, so unknown keys and wrong types are
// listed together.
func (v *DispatchValidator) ValidateBytes(data []byte) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		result.Add("$", fmt.Sprintf("invalid YAML: %v", err))
		return result, nil
	}
	if raw == nil {
		raw = map[string]any{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		result.Add("$", fmt.Sprintf("document is not representable as JSON: %v", err))
		return result, nil
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	v.checkSchema(doc, result)
	if !result.Valid {
		return result, nil
	}

	reg, err := v.parser.Parse(data)
	if err != nil {
		result.Add("$", err.Error())
		return result, nil
	}
	v.checkStruct(reg, result)
	return result, nil
}

func (v *DispatchValidator) checkSchema(doc any, result *entities.ValidationResult) {
	err := v.schema.Validate(doc)
	if err == nil {
		return
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Add("$", err.Error())
		return
	}
	var leaves []*jsonschema.ValidationError
	collectLeaves(ve, &leaves)
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].InstanceLocation < leaves[j].InstanceLocation })
	for _, leaf := range leaves {
		field := leaf.InstanceLocation
		if field == "" {
			field = "$"
		}
		result.Add(field, leaf.Message)
	}
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]*jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ve)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

func (v *DispatchValidator) checkStruct(reg *entities.DispatchRegistry, result *entities.ValidationResult) {
	err := v.validate.Struct(reg)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Add("$", err.Error())
		return
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		result.Add(field, ruleMessage(fe))
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "abspath":
		return fmt.Sprintf("%q is not an absolute path", fe.Value())
	case "required":
		return "must not be empty"
	case "alphanum":
		return fmt.Sprintf("architecture %q must be alphanumeric", fe.Value())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
