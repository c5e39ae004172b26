package schema

import (
	"fmt"
	"strings"
)

// RecordValidator validates whole records against a compiled collection
// schema. Compile it once per schema and reuse it for every record.
type RecordValidator struct {
	schema     *CollectionSchema
	validators map[string]FieldValidator
	order      []string
}

// Compile checks the schema-level invariants and builds a RecordValidator.
//
// Schema-level failures (malformed or reserved field names, case-insensitive
// duplicates, an empty field list) are reported as a FieldError value and
// block the schema outright; they are not per-record conditions.
func Compile(s *CollectionSchema) (*RecordValidator, *FieldError) {
	if len(s.Fields) == 0 {
		return nil, &FieldError{
			Code:    CodeInvalidFieldName,
			Message: "a collection schema needs at least one field",
		}
	}

	seen := make(map[string]string, len(s.Fields))
	validators := make(map[string]FieldValidator, len(s.Fields))
	order := make([]string, 0, len(s.Fields))

	for _, field := range s.Fields {
		if !IsValidFieldName(field.Name) {
			return nil, &FieldError{
				Code:    CodeInvalidFieldName,
				Field:   field.Name,
				Message: fmt.Sprintf("'%s' is not a valid field name", field.Name),
			}
		}
		lower := strings.ToLower(field.Name)
		if prior, dup := seen[lower]; dup {
			return nil, &FieldError{
				Code:    CodeDuplicateFieldName,
				Field:   field.Name,
				Message: fmt.Sprintf("field '%s' duplicates '%s' (names are unique case-insensitively)", field.Name, prior),
			}
		}
		seen[lower] = field.Name
		validators[field.Name] = CompileField(field)
		order = append(order, field.Name)
	}

	return &RecordValidator{schema: s, validators: validators, order: order}, nil
}

// Schema returns the schema this validator was compiled from.
func (rv *RecordValidator) Schema() *CollectionSchema {
	return rv.schema
}

// Validate runs every field validator against data and collects all
// failures; it never short-circuits, so the caller can surface every invalid
// field in one pass. On success the returned map holds the normalized wire
// values, not the raw form input. The implicit `id` field is skipped but
// carried through untouched when present.
func (rv *RecordValidator) Validate(data map[string]any) (map[string]any, FieldErrors) {
	normalized := make(map[string]any, len(rv.order)+1)
	errs := make(FieldErrors)

	for _, name := range rv.order {
		value, ferr := rv.validators[name](data[name])
		if ferr != nil {
			errs[name] = *ferr
			continue
		}
		normalized[name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if id, ok := data["id"]; ok {
		normalized["id"] = id
	}
	return normalized, nil
}
