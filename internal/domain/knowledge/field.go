package knowledge

import (
	"fmt"
	"regexp"
)

// FieldType is the type of a declared metadata field.
type FieldType string

const (
	// Tag is an exact-match string field.
	Tag FieldType = "tag"
	// Numeric is a float64 field supporting range filters.
	Numeric FieldType = "numeric"
)

var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// reservedFieldNames collide with internal hash fields.
var reservedFieldNames = map[string]bool{
	"__content": true, "__vector": true, "__title": true,
}

// Field is a single declared metadata field of a knowledge base.
type Field struct {
	name      string
	fieldType FieldType
}

// NewField validates and creates a Field.
func NewField(name string, fieldType FieldType) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if !fieldNameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q must start with a letter and contain only letters, digits, underscores", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if fieldType != Tag && fieldType != Numeric {
		return Field{}, fmt.Errorf("invalid field type %q", fieldType)
	}
	return Field{name: name, fieldType: fieldType}, nil
}

// ReconstructField creates a Field without validation (storage hydration).
func ReconstructField(name string, fieldType FieldType) Field {
	return Field{name: name, fieldType: fieldType}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field type.
func (f Field) FieldType() FieldType { return f.fieldType }
