// Package jsonschema validates form values against the crawler record's JSON Schema.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

const rootPath = "root"

// Compiler builds validators from schema documents.
type Compiler struct{}

var _ repository.SchemaCompiler = Compiler{}

// Compile parses a JSON Schema document.
func (Compiler) Compile(schema []byte) (repository.SchemaValidator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validator checks values against one compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// Validate reports the schema violations of value, in the order the schema
// reports them. A json.RawMessage is validated as the document it encodes.
func (v *Validator) Validate(value any) entity.ValidationResult {
	var loader gojsonschema.JSONLoader
	switch doc := value.(type) {
	case json.RawMessage:
		if len(doc) == 0 {
			doc = json.RawMessage("null")
		}
		loader = gojsonschema.NewBytesLoader(doc)
	default:
		loader = gojsonschema.NewGoLoader(value)
	}

	result, err := v.schema.Validate(loader)
	if err != nil {
		return entity.ValidationResult{Violations: []entity.Violation{{Path: rootPath, Message: err.Error()}}}
	}
	if result.Valid() {
		return entity.ValidationResult{}
	}

	violations := make([]entity.Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, entity.Violation{
			Path:    fieldPath(re),
			Message: re.Description(),
		})
	}
	return entity.ValidationResult{Violations: violations}
}

// fieldPath renders "(root).a.b" as "root.a.b".
func fieldPath(re gojsonschema.ResultError) string {
	path := re.Context().String()
	return rootPath + strings.TrimPrefix(path, gojsonschema.STRING_CONTEXT_ROOT)
}
