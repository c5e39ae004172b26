package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCompileFieldRequired(t *testing.T) {
	types := []FieldType{
		FieldTypeText, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate,
		FieldTypeEmail, FieldTypeURL, FieldTypeJSON, FieldTypeFile,
		FieldTypeRelation, FieldTypeRichText,
	}

	for _, ft := range types {
		t.Run(string(ft)+" rejects absent input", func(t *testing.T) {
			v := CompileField(FieldDefinition{Name: "f", Type: ft, Required: true})

			for _, raw := range []any{nil, "", []any{}, []string{}} {
				_, ferr := v(raw)
				require.NotNil(t, ferr, "raw=%v", raw)
				assert.Equal(t, CodeRequiredFieldMissing, ferr.Code)
				assert.Equal(t, "f", ferr.Field)
			}
		})
	}
}

func TestCompileFieldOptionalAbsent(t *testing.T) {
	t.Run("falls back to the declared default", func(t *testing.T) {
		v := CompileField(FieldDefinition{Name: "qty", Type: FieldTypeNumber, Default: 7.0})

		got, ferr := v("")
		require.Nil(t, ferr)
		assert.Equal(t, 7.0, got)
	})

	t.Run("falls back to the type empty value", func(t *testing.T) {
		cases := map[FieldType]any{
			FieldTypeText:     "",
			FieldTypeEmail:    "",
			FieldTypeURL:      "",
			FieldTypeDate:     "",
			FieldTypeRelation: "",
			FieldTypeBoolean:  false,
			FieldTypeNumber:   nil,
			FieldTypeJSON:     nil,
			FieldTypeRichText: nil,
			FieldTypeFile:     []any{},
		}
		for ft, want := range cases {
			v := CompileField(FieldDefinition{Name: "f", Type: ft})
			got, ferr := v(nil)
			require.Nil(t, ferr, "type=%s", ft)
			assert.Equal(t, want, got, "type=%s", ft)
		}
	})
}

func TestTextValidator(t *testing.T) {
	t.Run("accepts plain text", func(t *testing.T) {
		v := CompileField(FieldDefinition{Name: "title", Type: FieldTypeText})
		got, ferr := v("hello")
		require.Nil(t, ferr)
		assert.Equal(t, "hello", got)
	})

	t.Run("rejects non-strings", func(t *testing.T) {
		v := CompileField(FieldDefinition{Name: "title", Type: FieldTypeText})
		_, ferr := v(42)
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidText, ferr.Code)
	})

	t.Run("enforces length bounds", func(t *testing.T) {
		v := CompileField(FieldDefinition{
			Name: "title", Type: FieldTypeText,
			Constraints: &Constraints{MinLength: intPtr(3), MaxLength: intPtr(5)},
		})

		_, ferr := v("ab")
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)

		_, ferr = v("toolong")
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)

		got, ferr := v("just")
		require.Nil(t, ferr)
		assert.Equal(t, "just", got)
	})

	t.Run("enforces pattern", func(t *testing.T) {
		v := CompileField(FieldDefinition{
			Name: "slug", Type: FieldTypeText,
			Constraints: &Constraints{Pattern: `^[a-z-]+$`},
		})

		_, ferr := v("Not A Slug")
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)

		_, ferr = v("a-slug")
		assert.Nil(t, ferr)
	})

	t.Run("ignores an unparseable pattern", func(t *testing.T) {
		v := CompileField(FieldDefinition{
			Name: "slug", Type: FieldTypeText,
			Constraints: &Constraints{Pattern: `([`},
		})
		_, ferr := v("anything")
		assert.Nil(t, ferr)
	})

	t.Run("enforces enum", func(t *testing.T) {
		v := CompileField(FieldDefinition{
			Name: "status", Type: FieldTypeText,
			Constraints: &Constraints{Enum: []any{"draft", "published"}},
		})

		_, ferr := v("archived")
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)

		got, ferr := v("draft")
		require.Nil(t, ferr)
		assert.Equal(t, "draft", got)
	})
}

func TestNumberValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "price", Type: FieldTypeNumber, Required: true})

	t.Run("coerces numeric strings", func(t *testing.T) {
		got, ferr := v("12.5")
		require.Nil(t, ferr)
		assert.Equal(t, 12.5, got)
	})

	t.Run("accepts integers as float64", func(t *testing.T) {
		got, ferr := v(3)
		require.Nil(t, ferr)
		assert.Equal(t, 3.0, got)
	})

	t.Run("rejects non-numeric text", func(t *testing.T) {
		_, ferr := v("abc")
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidNumber, ferr.Code)
	})

	t.Run("enforces min and max", func(t *testing.T) {
		bounded := CompileField(FieldDefinition{
			Name: "price", Type: FieldTypeNumber,
			Constraints: &Constraints{Min: floatPtr(0), Max: floatPtr(100)},
		})

		_, ferr := bounded(-1)
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)

		_, ferr = bounded(101)
		require.NotNil(t, ferr)
		assert.Equal(t, CodeConstraintViolation, ferr.Code)
	})

	t.Run("enum tolerates int versus float64", func(t *testing.T) {
		enum := CompileField(FieldDefinition{
			Name: "size", Type: FieldTypeNumber,
			Constraints: &Constraints{Enum: []any{1, 2, 3}},
		})
		_, ferr := enum(2.0)
		assert.Nil(t, ferr)
	})
}

func TestBooleanValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "active", Type: FieldTypeBoolean, Required: true})

	got, ferr := v(true)
	require.Nil(t, ferr)
	assert.Equal(t, true, got)

	_, ferr = v("true")
	require.NotNil(t, ferr)
	assert.Equal(t, CodeInvalidBoolean, ferr.Code)
}

func TestDateValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "published_at", Type: FieldTypeDate, Required: true})

	valid := []string{
		"2026-08-29T10:00:00Z",
		"2026-08-29 10:00:00.000Z",
		"2026-08-29 10:00:00",
		"2026-08-29",
	}
	for _, s := range valid {
		got, ferr := v(s)
		require.Nil(t, ferr, "input=%s", s)
		assert.Equal(t, s, got)
	}

	_, ferr := v("29/08/2026")
	require.NotNil(t, ferr)
	assert.Equal(t, CodeInvalidDate, ferr.Code)

	_, ferr = v(20260829)
	require.NotNil(t, ferr)
	assert.Equal(t, CodeInvalidDate, ferr.Code)
}

func TestEmailValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "contact", Type: FieldTypeEmail, Required: true})

	_, ferr := v("ops@example.com")
	assert.Nil(t, ferr)

	for _, bad := range []any{"not-an-email", "two@@example.com", "a b@example.com", 5} {
		_, ferr := v(bad)
		require.NotNil(t, ferr, "input=%v", bad)
		assert.Equal(t, CodeInvalidEmail, ferr.Code)
	}
}

func TestURLValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "homepage", Type: FieldTypeURL, Required: true})

	_, ferr := v("https://example.com")
	assert.Nil(t, ferr)
	_, ferr = v("http://example.com/a?b=c")
	assert.Nil(t, ferr)

	_, ferr = v("ftp://example.com")
	require.NotNil(t, ferr)
	assert.Equal(t, CodeInvalidURL, ferr.Code)
}

func TestJSONValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "meta", Type: FieldTypeJSON, Required: true})

	t.Run("parses JSON text", func(t *testing.T) {
		got, ferr := v(`{"a": 1}`)
		require.Nil(t, ferr)
		assert.Equal(t, map[string]any{"a": 1.0}, got)
	})

	t.Run("passes structured values through", func(t *testing.T) {
		got, ferr := v(map[string]any{"a": 1.0})
		require.Nil(t, ferr)
		assert.Equal(t, map[string]any{"a": 1.0}, got)
	})

	t.Run("rejects malformed JSON text", func(t *testing.T) {
		_, ferr := v(`{"a":`)
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidJSON, ferr.Code)
	})
}

func TestFileValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "attachments", Type: FieldTypeFile, Required: true})

	t.Run("accepts a single reference", func(t *testing.T) {
		got, ferr := v("uploads/a.png")
		require.Nil(t, ferr)
		assert.Equal(t, "uploads/a.png", got)
	})

	t.Run("accepts a reference list", func(t *testing.T) {
		_, ferr := v([]any{"a.png", "b.png"})
		assert.Nil(t, ferr)
	})

	t.Run("rejects an overlong reference", func(t *testing.T) {
		long := make([]byte, maxFileReferenceLength+1)
		for i := range long {
			long[i] = 'x'
		}
		_, ferr := v(string(long))
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidFileReference, ferr.Code)
	})

	t.Run("rejects non-string list items", func(t *testing.T) {
		_, ferr := v([]any{"a.png", 7})
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidFileReference, ferr.Code)
	})
}

func TestRelationValidator(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "author", Type: FieldTypeRelation, Required: true})

	_, ferr := v("rec_8f2k1")
	assert.Nil(t, ferr)

	_, ferr = v(42)
	assert.Nil(t, ferr)

	t.Run("accepts whole float identifiers", func(t *testing.T) {
		_, ferr := v(42.0)
		assert.Nil(t, ferr)
	})

	t.Run("rejects fractional identifiers", func(t *testing.T) {
		_, ferr := v(42.5)
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidRelationID, ferr.Code)
	})

	t.Run("rejects overlong identifiers", func(t *testing.T) {
		long := make([]byte, maxRelationIDLength+1)
		for i := range long {
			long[i] = 'x'
		}
		_, ferr := v(string(long))
		require.NotNil(t, ferr)
		assert.Equal(t, CodeInvalidRelationID, ferr.Code)
	})
}

func TestUnknownFieldTypeAcceptsAnything(t *testing.T) {
	v := CompileField(FieldDefinition{Name: "future", Type: FieldType("geo_point"), Required: true})

	got, ferr := v(map[string]any{"lat": 1.0, "lon": 2.0})
	require.Nil(t, ferr)
	assert.Equal(t, map[string]any{"lat": 1.0, "lon": 2.0}, got)

	// Required-ness still applies even for unknown types.
	_, ferr = v(nil)
	require.NotNil(t, ferr)
	assert.Equal(t, CodeRequiredFieldMissing, ferr.Code)
}
