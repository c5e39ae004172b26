package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldValidator checks and coerces a raw form value into its wire
// representation. A nil *FieldError means the value passed; the returned
// value is the normalized one to commit.
type FieldValidator func(raw any) (any, *FieldError)

// emailPattern is a deliberately loose single-@ shape check. Anything
// stricter belongs to the backend.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxFileReferenceLength = 500
	maxRelationIDLength    = 50
)

// dateLayouts are the accepted ISO shapes, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CompileField builds the validator for a single field definition.
//
// Required-ness is evaluated before any type check: an absent value on a
// required field fails with REQUIRED_FIELD_MISSING no matter the type, and
// an absent value on an optional field short-circuits to the field default
// or the type's empty value. Empty string, nil and an empty list all count
// as absent. Unknown field types degrade to an accept-anything validator so
// a newer backend does not block the form.
func CompileField(field FieldDefinition) FieldValidator {
	typed := typeValidator(field)

	return func(raw any) (any, *FieldError) {
		if isAbsent(raw) {
			if field.Required {
				return nil, &FieldError{
					Code:    CodeRequiredFieldMissing,
					Field:   field.Name,
					Message: fmt.Sprintf("field '%s' is required", field.Name),
				}
			}
			if field.Default != nil {
				return field.Default, nil
			}
			return EmptyValue(field.Type), nil
		}
		return typed(raw)
	}
}

// typeValidator dispatches on the field type. The switch is exhaustive over
// the known FieldType constants; the default arm is the graceful-degradation
// path for types this client does not know yet.
func typeValidator(field FieldDefinition) FieldValidator {
	switch field.Type {
	case FieldTypeText:
		return textValidator(field)
	case FieldTypeNumber:
		return numberValidator(field)
	case FieldTypeBoolean:
		return booleanValidator(field)
	case FieldTypeDate:
		return dateValidator(field)
	case FieldTypeEmail:
		return emailValidator(field)
	case FieldTypeURL:
		return urlValidator(field)
	case FieldTypeJSON, FieldTypeRichText:
		return jsonValidator(field)
	case FieldTypeFile:
		return fileValidator(field)
	case FieldTypeRelation:
		return relationValidator(field)
	default:
		return func(raw any) (any, *FieldError) { return raw, nil }
	}
}

// EmptyValue returns the type-appropriate empty value committed for an
// optional field with no input and no default.
func EmptyValue(ft FieldType) any {
	switch ft {
	case FieldTypeText, FieldTypeEmail, FieldTypeURL, FieldTypeDate, FieldTypeRelation:
		return ""
	case FieldTypeBoolean:
		return false
	case FieldTypeNumber, FieldTypeJSON, FieldTypeRichText:
		return nil
	case FieldTypeFile:
		return []any{}
	default:
		return nil
	}
}

// isAbsent reports whether a raw form value counts as "no input". The empty
// string, nil and an empty list are all treated identically for both the
// required check and default substitution.
func isAbsent(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func textValidator(field FieldDefinition) FieldValidator {
	// Patterns come from runtime schema data; an invalid one is ignored
	// rather than allowed to panic the form.
	var pattern *regexp.Regexp
	if field.Constraints != nil && field.Constraints.Pattern != "" {
		pattern, _ = regexp.Compile(field.Constraints.Pattern)
	}

	return func(raw any) (any, *FieldError) {
		str, ok := raw.(string)
		if !ok {
			return nil, fieldErr(field, CodeInvalidText, "expected text, got %T", raw)
		}
		if c := field.Constraints; c != nil {
			if c.MinLength != nil && len(str) < *c.MinLength {
				return nil, fieldErr(field, CodeConstraintViolation, "must be at least %d characters", *c.MinLength)
			}
			if c.MaxLength != nil && len(str) > *c.MaxLength {
				return nil, fieldErr(field, CodeConstraintViolation, "must be at most %d characters", *c.MaxLength)
			}
			if pattern != nil && !pattern.MatchString(str) {
				return nil, fieldErr(field, CodeConstraintViolation, "does not match pattern %s", c.Pattern)
			}
			if len(c.Enum) > 0 && !enumContains(c.Enum, str) {
				return nil, fieldErr(field, CodeConstraintViolation, "must be one of %v", c.Enum)
			}
		}
		return str, nil
	}
}

func numberValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		num, ok := toFloat(raw)
		if !ok {
			return nil, fieldErr(field, CodeInvalidNumber, "'%v' is not a number", raw)
		}
		if c := field.Constraints; c != nil {
			if c.Min != nil && num < *c.Min {
				return nil, fieldErr(field, CodeConstraintViolation, "must be >= %v", *c.Min)
			}
			if c.Max != nil && num > *c.Max {
				return nil, fieldErr(field, CodeConstraintViolation, "must be <= %v", *c.Max)
			}
			if len(c.Enum) > 0 && !enumContains(c.Enum, num) {
				return nil, fieldErr(field, CodeConstraintViolation, "must be one of %v", c.Enum)
			}
		}
		return num, nil
	}
}

func booleanValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		b, ok := raw.(bool)
		if !ok {
			return nil, fieldErr(field, CodeInvalidBoolean, "expected true or false, got %T", raw)
		}
		return b, nil
	}
}

func dateValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		str, ok := raw.(string)
		if !ok {
			return nil, fieldErr(field, CodeInvalidDate, "expected a date string, got %T", raw)
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, str); err == nil {
				return str, nil
			}
		}
		return nil, fieldErr(field, CodeInvalidDate, "'%s' is not an ISO date", str)
	}
}

func emailValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		str, ok := raw.(string)
		if !ok || !emailPattern.MatchString(str) {
			return nil, fieldErr(field, CodeInvalidEmail, "'%v' is not a valid email address", raw)
		}
		return str, nil
	}
}

func urlValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		str, ok := raw.(string)
		if !ok || !(strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://")) {
			return nil, fieldErr(field, CodeInvalidURL, "'%v' must start with http:// or https://", raw)
		}
		return str, nil
	}
}

func jsonValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		switch v := raw.(type) {
		case string:
			var parsed any
			if err := json.Unmarshal([]byte(v), &parsed); err != nil {
				return nil, fieldErr(field, CodeInvalidJSON, "not valid JSON: %v", err)
			}
			return parsed, nil
		case map[string]any, []any, float64, bool:
			// already structured
			return v, nil
		default:
			return nil, fieldErr(field, CodeInvalidJSON, "expected JSON text or a structured value, got %T", raw)
		}
	}
}

func fileValidator(field FieldDefinition) FieldValidator {
	check := func(ref string) *FieldError {
		if ref == "" || len(ref) > maxFileReferenceLength {
			return fieldErr(field, CodeInvalidFileReference, "file reference must be 1-%d characters", maxFileReferenceLength)
		}
		return nil
	}

	return func(raw any) (any, *FieldError) {
		switch v := raw.(type) {
		case string:
			if err := check(v); err != nil {
				return nil, err
			}
			return v, nil
		case []any:
			for _, item := range v {
				ref, ok := item.(string)
				if !ok {
					return nil, fieldErr(field, CodeInvalidFileReference, "expected a file reference string, got %T", item)
				}
				if err := check(ref); err != nil {
					return nil, err
				}
			}
			return v, nil
		case []string:
			for _, ref := range v {
				if err := check(ref); err != nil {
					return nil, err
				}
			}
			return v, nil
		default:
			return nil, fieldErr(field, CodeInvalidFileReference, "expected file reference(s), got %T", raw)
		}
	}
}

func relationValidator(field FieldDefinition) FieldValidator {
	return func(raw any) (any, *FieldError) {
		switch v := raw.(type) {
		case string:
			if len(v) > maxRelationIDLength {
				return nil, fieldErr(field, CodeInvalidRelationID, "relation id must be at most %d characters", maxRelationIDLength)
			}
			return v, nil
		case int, int32, int64:
			return v, nil
		case float64:
			// JSON numbers arrive as float64; only whole values identify a record.
			if v == float64(int64(v)) {
				return v, nil
			}
			return nil, fieldErr(field, CodeInvalidRelationID, "'%v' is not a record identifier", v)
		default:
			return nil, fieldErr(field, CodeInvalidRelationID, "expected a string or integer identifier, got %T", raw)
		}
	}
}

// toFloat coerces numeric Go types and numeric strings to float64.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// enumContains compares against allowed values, tolerating the int/float64
// mismatch JSON decoding introduces.
func enumContains(allowed []any, value any) bool {
	for _, a := range allowed {
		if reflect.DeepEqual(a, value) {
			return true
		}
		af, aok := toFloat(a)
		vf, vok := toFloat(value)
		if aok && vok && af == vf {
			return true
		}
	}
	return false
}

func fieldErr(field FieldDefinition, code ErrorCode, format string, args ...any) *FieldError {
	return &FieldError{
		Code:    code,
		Field:   field.Name,
		Message: fmt.Sprintf(format, args...),
	}
}
