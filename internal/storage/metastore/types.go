package metastore

import (
	"time"
)

// SchemaRef references a JSON schema used to validate bin values
type SchemaRef struct {
	// ID is the unique schema identifier
	ID string `json:"id"`
	// Definition is the raw JSON Schema definition
	Definition []byte `json:"definition,omitempty"`
}

// SetConfig describes one registered set within a namespace
type SetConfig struct {
	// Namespace is the namespace identifier
	Namespace string `json:"namespace"`
	// Set is the set name within the namespace
	Set string `json:"set"`
	// TrackedBins are the bin names the reaper sweeps in this set
	TrackedBins []string `json:"tracked_bins,omitempty"`
	// DefaultTTL is applied when a write does not specify a TTL (0 = none)
	DefaultTTL time.Duration `json:"default_ttl,omitempty"`
	// Schema optionally validates bin values written to this set
	Schema *SchemaRef `json:"schema,omitempty"`
	// CreatedAt is when the set was registered
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the set was last updated
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPath constructs the registry path from components
func SetPath(namespace, set string) string {
	return namespace + "/" + set
}

// GetPath returns the registry path for a config
func (sc *SetConfig) GetPath() string {
	return SetPath(sc.Namespace, sc.Set)
}

// Validate validates the set configuration
func (sc *SetConfig) Validate() error {
	if sc.Namespace == "" {
		return InvalidConfigError{Field: "namespace", Reason: "cannot be empty"}
	}
	if sc.Set == "" {
		return InvalidConfigError{Field: "set", Reason: "cannot be empty"}
	}
	if sc.DefaultTTL < 0 {
		return InvalidConfigError{Field: "default_ttl", Reason: "cannot be negative"}
	}
	for _, bin := range sc.TrackedBins {
		if bin == "" {
			return InvalidConfigError{Field: "tracked_bins", Reason: "bin name cannot be empty"}
		}
	}
	if sc.Schema != nil && len(sc.Schema.Definition) == 0 {
		return InvalidConfigError{Field: "schema", Reason: "definition cannot be empty"}
	}
	return nil
}
