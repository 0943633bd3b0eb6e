package repository

import "github.com/user/crawler-console/internal/entity"

// SchemaValidator checks a decoded form value against a compiled schema.
type SchemaValidator interface {
	Validate(value any) entity.ValidationResult
}

// SchemaCompiler turns a schema document into a validator.
type SchemaCompiler interface {
	Compile(schema []byte) (SchemaValidator, error)
}
