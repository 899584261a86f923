package record

import (
	"time"
)

// Key identifies exactly one record in the store
type Key struct {
	// Namespace is the namespace identifier
	Namespace string
	// Set is the set name within the namespace
	Set string
	// ID is the record identifier within the set
	ID string
}

// NewKey constructs a record key
func NewKey(namespace, set, id string) Key {
	return Key{Namespace: namespace, Set: set, ID: id}
}

// String returns the path form of the key
func (k Key) String() string {
	return k.Namespace + keySeparator + k.Set + keySeparator + k.ID
}

// Bins is a record's mapping from bin name to raw bin content
type Bins map[string][]byte

// Clone returns a deep copy of the bin mapping
func (b Bins) Clone() Bins {
	copied := make(Bins, len(b))
	for name, content := range b {
		c := make([]byte, len(content))
		copy(c, content)
		copied[name] = c
	}
	return copied
}

// Metadata holds record-level metadata maintained by the store
type Metadata struct {
	// Generation counts writes applied to the record
	Generation uint64
	// UpdatedAt is when the record was last written
	UpdatedAt time.Time
}

// ScanStats reports the outcome of a full scan over a set
type ScanStats struct {
	// Visited is the number of records handed to the visit callback
	Visited int
	// Failed is the number of records whose visit callback returned an error
	Failed int
}

// ApplyFunc mutates one record's bin mapping inside the per-key execution
// context. now is the store's execution-time clock, captured under the key
// lock. Return mutated=true to persist the record.
type ApplyFunc func(now time.Time, bins Bins) (mutated bool, err error)

// VisitFunc is invoked once per record during a scan. The bins are a
// snapshot; mutations must go through Apply against the supplied key.
type VisitFunc func(key Key, meta Metadata, bins Bins) error
