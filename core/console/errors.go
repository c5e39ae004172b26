package console

import (
	"fmt"
	"strings"

	"github.com/wanjohi/go-curator/core/schema"
)

// ValidationError carries per-field validation failures back to the form.
// It is returned before any cache mutation or network call happens.
type ValidationError struct {
	Fields schema.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("validation failed for field(s): %s", strings.Join(names, ", "))
}

// SchemaError reports a schema-level problem (reserved name, duplicate
// field) that blocks collection creation or editing entirely.
type SchemaError struct {
	Issue schema.FieldError
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %s", e.Issue.Message)
}
