package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	schemaDef := []byte(`{
		"type": "object",
		"properties": {
			"score": {"type": "number"},
			"owner": {"type": "string"}
		},
		"required": ["score"]
	}`)

	// Valid value
	err := validator.Validate([]byte(`{"score": 100, "owner": "k1"}`), schemaDef)
	assert.NoError(t, err)

	// Wrong type
	err = validator.Validate([]byte(`{"score": "high"}`), schemaDef)
	require.Error(t, err)
	assert.IsType(t, ValidationError{}, err)

	// Missing required field
	err = validator.Validate([]byte(`{"owner": "k1"}`), schemaDef)
	require.Error(t, err)
	assert.IsType(t, ValidationError{}, err)
}

func TestValidator_Validate_NotJSON(t *testing.T) {
	validator := NewValidator()

	err := validator.Validate([]byte(`{not json}`), []byte(`{"type": "object"}`))
	require.Error(t, err)
	assert.IsType(t, ValidationError{}, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestValidator_CompileSchema_Caches(t *testing.T) {
	validator := NewValidator()

	schemaDef := []byte(`{"type": "string"}`)

	first, err := validator.CompileSchema(schemaDef)
	require.NoError(t, err)

	second, err := validator.CompileSchema(schemaDef)
	require.NoError(t, err)

	// Same compiled instance comes back from the cache
	assert.Same(t, first, second)

	validator.ClearCache()
	third, err := validator.CompileSchema(schemaDef)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestValidator_CompileSchema_Invalid(t *testing.T) {
	validator := NewValidator()

	_, err := validator.CompileSchema([]byte(`{"type": 42}`))
	assert.Error(t, err)
}
