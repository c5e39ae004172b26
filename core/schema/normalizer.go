package schema

import (
	"encoding/json"
	"strconv"
)

// ToWire converts a form-editable value into its wire representation for the
// given field type. It never fails: unparseable input is passed through so
// the validator, not the normalizer, owns rejection. An absent value on an
// optional field becomes the type's wire-level null.
func ToWire(ft FieldType, formValue any, required bool) any {
	if isAbsent(formValue) {
		if required {
			return formValue
		}
		switch ft {
		case FieldTypeNumber, FieldTypeJSON, FieldTypeRichText:
			return nil
		case FieldTypeFile:
			return []any{}
		case FieldTypeBoolean:
			return false
		default:
			return formValue
		}
	}

	switch ft {
	case FieldTypeNumber:
		if num, ok := toFloat(formValue); ok {
			return num
		}
		return formValue
	case FieldTypeBoolean:
		switch v := formValue.(type) {
		case bool:
			return v
		case string:
			return v == "true"
		default:
			// Anything else passes through for the validator to reject.
			return formValue
		}
	case FieldTypeJSON, FieldTypeRichText:
		if str, ok := formValue.(string); ok {
			var parsed any
			if err := json.Unmarshal([]byte(str), &parsed); err != nil {
				// Fall back to the raw string rather than dropping input.
				return str
			}
			return parsed
		}
		return formValue
	case FieldTypeFile:
		// Upload handles resolve to reference strings at the form layer.
		// A single reference is canonicalized to a one-element list so the
		// wire and form shapes of a file field are always lists.
		if ref, ok := formValue.(string); ok {
			return []any{ref}
		}
		return formValue
	default:
		return formValue
	}
}

// ToForm converts a wire value back into its form-editable representation.
// It is the inverse of ToWire up to JSON whitespace and file-list
// canonicalization: structured JSON is pretty-printed for editing, numbers
// render in their shortest decimal form, and file fields always present as
// lists even when the wire holds a single reference.
func ToForm(ft FieldType, wireValue any) any {
	switch ft {
	case FieldTypeNumber:
		switch v := wireValue.(type) {
		case nil:
			return ""
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		default:
			return wireValue
		}
	case FieldTypeBoolean:
		if wireValue == nil {
			return false
		}
		return wireValue
	case FieldTypeJSON, FieldTypeRichText:
		switch v := wireValue.(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			pretty, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return wireValue
			}
			return string(pretty)
		}
	case FieldTypeFile:
		if wireValue == nil {
			return []any{}
		}
		if ref, ok := wireValue.(string); ok {
			return []any{ref}
		}
		return wireValue
	default:
		if wireValue == nil {
			return ""
		}
		return wireValue
	}
}
