// Package utils holds conversion helpers shared by the client layers.
package utils

import (
	"encoding/json"
	"fmt"
)

// StructToMap converts a struct into the map[string]any document form the
// cache stores, honoring the struct's json tags. The round trip through
// encoding/json keeps nested values in their wire shape (maps, slices,
// RFC 3339 time strings), which is exactly what cache documents hold.
func StructToMap[T any](value T) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", value, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert %T to a document: %w", value, err)
	}
	return doc, nil
}

// MapToStruct is the inverse of StructToMap: it populates a new T from a
// cache document.
func MapToStruct[T any](doc map[string]any) (T, error) {
	var result T

	raw, err := json.Marshal(doc)
	if err != nil {
		return result, fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("failed to convert document to %T: %w", result, err)
	}
	return result, nil
}
