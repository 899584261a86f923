package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates bin values against JSON schemas
type Validator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates a new schema validator
func NewValidator() *Validator {
	return &Validator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate validates a bin value against a schema definition.
// The value must be a JSON document.
func (v *Validator) Validate(value []byte, schemaDefinition []byte) error {
	var valueJSON interface{}
	if err := json.Unmarshal(value, &valueJSON); err != nil {
		return ValidationError{Reason: fmt.Sprintf("value is not valid JSON: %v", err)}
	}

	schema, err := v.CompileSchema(schemaDefinition)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := schema.Validate(valueJSON); err != nil {
		return ValidationError{Reason: err.Error()}
	}

	return nil
}

// CompileSchema compiles a schema definition and caches it
func (v *Validator) CompileSchema(schemaDefinition []byte) (*jsonschema.Schema, error) {
	// The raw definition is the cache key
	cacheKey := string(schemaDefinition)

	v.mu.RLock()
	if compiled, exists := v.compiled[cacheKey]; exists {
		v.mu.RUnlock()
		return compiled, nil
	}
	v.mu.RUnlock()

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaDefinition)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.mu.Lock()
	v.compiled[cacheKey] = schema
	v.mu.Unlock()

	return schema, nil
}

// ClearCache clears the compiled schema cache
func (v *Validator) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.compiled = make(map[string]*jsonschema.Schema)
}
