// Package schema turns runtime-supplied collection schemas into record
// validators and normalizers. A schema is compiled once per collection; the
// resulting validator checks and coerces raw form values into their wire
// representation, reporting every invalid field in a single pass.
package schema

import (
	"regexp"
	"strings"
)

// FieldType represents the field types supported by collection schemas.
type FieldType string

const (
	FieldTypeText     FieldType = "text"     // Plain text
	FieldTypeNumber   FieldType = "number"   // Numeric data
	FieldTypeBoolean  FieldType = "boolean"  // True/false values
	FieldTypeDate     FieldType = "date"     // ISO-parseable date or datetime
	FieldTypeEmail    FieldType = "email"    // Email address
	FieldTypeURL      FieldType = "url"      // http(s) URL
	FieldTypeJSON     FieldType = "json"     // Arbitrary JSON value
	FieldTypeFile     FieldType = "file"     // File reference string(s)
	FieldTypeRelation FieldType = "relation" // Identifier of a record in another collection
	FieldTypeRichText FieldType = "richtext" // Structured editor content, JSON on the wire
)

// ErrorCode identifies a class of validation failure.
type ErrorCode string

const (
	CodeRequiredFieldMissing ErrorCode = "REQUIRED_FIELD_MISSING"
	CodeInvalidText          ErrorCode = "INVALID_TEXT"
	CodeInvalidNumber        ErrorCode = "INVALID_NUMBER"
	CodeInvalidBoolean       ErrorCode = "INVALID_BOOLEAN"
	CodeInvalidDate          ErrorCode = "INVALID_DATE"
	CodeInvalidEmail         ErrorCode = "INVALID_EMAIL"
	CodeInvalidURL           ErrorCode = "INVALID_URL"
	CodeInvalidJSON          ErrorCode = "INVALID_JSON"
	CodeInvalidFileReference ErrorCode = "INVALID_FILE_REFERENCE"
	CodeInvalidRelationID    ErrorCode = "INVALID_RELATION_ID"
	CodeConstraintViolation  ErrorCode = "CONSTRAINT_VIOLATION"
	CodeDuplicateFieldName   ErrorCode = "DUPLICATE_FIELD_NAME"
	CodeInvalidFieldName     ErrorCode = "INVALID_FIELD_NAME"
	CodeReservedName         ErrorCode = "RESERVED_NAME"
)

// FieldError describes a single field-level validation failure. It is a
// value, not a Go error: validation failures are expected outcomes that the
// caller reports back to the form, never control flow.
type FieldError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

// FieldErrors maps field names to their validation failure. An empty map
// means the record passed.
type FieldErrors map[string]FieldError

// Constraints holds the optional per-field validation constraints. Pointers
// distinguish an explicit zero bound from an absent one.
type Constraints struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
}

// FieldDefinition defines one column of a collection schema.
type FieldDefinition struct {
	Name        string       `json:"name"`
	Type        FieldType    `json:"type"`
	Required    bool         `json:"required"`
	Default     any          `json:"default,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// CollectionSchema is an ordered list of field definitions for one
// collection. The implicit `id` field is server-owned and never appears in
// Fields.
type CollectionSchema struct {
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// identifierPattern is the shape every field name must match.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reservedFieldNames are server-owned columns a schema may not redefine.
var reservedFieldNames = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"updated_at": {},
	"collection": {},
	"expand":     {},
}

// reservedCollectionNames are resource names the backend claims for itself.
var reservedCollectionNames = map[string]struct{}{
	"users":       {},
	"admins":      {},
	"settings":    {},
	"collections": {},
}

// IsValidFieldName reports whether name is a well-formed, non-reserved field
// identifier.
func IsValidFieldName(name string) bool {
	if !identifierPattern.MatchString(name) {
		return false
	}
	_, reserved := reservedFieldNames[strings.ToLower(name)]
	return !reserved
}

// IsReservedCollectionName reports whether name collides with a built-in
// resource.
func IsReservedCollectionName(name string) bool {
	_, reserved := reservedCollectionNames[strings.ToLower(name)]
	return reserved
}

// IsValidCollectionName reports whether name is a well-formed, non-reserved
// collection identifier.
func IsValidCollectionName(name string) bool {
	return identifierPattern.MatchString(name) && !IsReservedCollectionName(name)
}

// Field returns the definition of the named field, or nil.
func (s *CollectionSchema) Field(name string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
