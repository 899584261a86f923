package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultRegistryFile is the default filename for registry persistence
	DefaultRegistryFile = "sets.json"
)

// Store is the set registry: an in-memory cache of set configurations
// persisted as a JSON file
type Store struct {
	mu       sync.RWMutex
	sets     map[string]*SetConfig
	filePath string
	dirty    bool
}

// NewStore creates a new set registry
func NewStore(metadataDir string) (*Store, error) {
	filePath := filepath.Join(metadataDir, DefaultRegistryFile)

	store := &Store{
		sets:     make(map[string]*SetConfig),
		filePath: filePath,
		dirty:    false,
	}

	// Load existing registry from disk
	if err := store.Load(); err != nil {
		// If file doesn't exist, that's okay - we'll create it on first write
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
		log.Info().Str("file", filePath).Msg("Registry file does not exist, will be created on first set registration")
	}

	return store, nil
}

// CreateSet registers a new set configuration
func (s *Store) CreateSet(config *SetConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := config.GetPath()

	if _, exists := s.sets[path]; exists {
		return SetExistsError{Path: path}
	}

	now := time.Now()
	if config.CreatedAt.IsZero() {
		config.CreatedAt = now
	}
	config.UpdatedAt = now

	s.sets[path] = config
	s.dirty = true

	if err := s.flush(); err != nil {
		// Remove from memory if flush failed
		delete(s.sets, path)
		return fmt.Errorf("failed to persist set: %w", err)
	}

	log.Info().
		Str("path", path).
		Strs("tracked_bins", config.TrackedBins).
		Msg("Set registered")

	return nil
}

// GetSet retrieves a set configuration by namespace and set name
func (s *Store) GetSet(namespace, set string) (*SetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := SetPath(namespace, set)
	config, exists := s.sets[path]
	if !exists {
		return nil, SetNotFoundError{Path: path}
	}

	// Return a copy to prevent external modification
	return s.copySet(config), nil
}

// ListSets lists registered sets, optionally filtered by namespace
func (s *Store) ListSets(namespace string) ([]*SetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*SetConfig, 0, len(s.sets))

	for _, config := range s.sets {
		if namespace != "" && config.Namespace != namespace {
			continue
		}
		results = append(results, s.copySet(config))
	}

	return results, nil
}

// UpdateSet updates an existing set configuration
func (s *Store) UpdateSet(namespace, set string, updater func(*SetConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := SetPath(namespace, set)
	config, exists := s.sets[path]
	if !exists {
		return SetNotFoundError{Path: path}
	}

	// Apply updates to a copy
	updated := s.copySet(config)
	if err := updater(updated); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()

	s.sets[path] = updated
	s.dirty = true

	if err := s.flush(); err != nil {
		// Revert if flush failed
		s.sets[path] = config
		return fmt.Errorf("failed to persist update: %w", err)
	}

	log.Info().Str("path", path).Msg("Set updated")

	return nil
}

// DeleteSet removes a set configuration
func (s *Store) DeleteSet(namespace, set string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := SetPath(namespace, set)
	if _, exists := s.sets[path]; !exists {
		return SetNotFoundError{Path: path}
	}

	delete(s.sets, path)
	s.dirty = true

	if err := s.flush(); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to persist set deletion")
		return fmt.Errorf("failed to persist deletion: %w", err)
	}

	log.Info().Str("path", path).Msg("Set deleted")

	return nil
}

// Load loads the registry from disk
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var sets map[string]*SetConfig
	if err := json.Unmarshal(data, &sets); err != nil {
		return fmt.Errorf("failed to unmarshal registry: %w", err)
	}

	s.sets = sets
	s.dirty = false

	log.Info().
		Str("file", s.filePath).
		Int("count", len(s.sets)).
		Msg("Registry loaded from disk")

	return nil
}

// Flush persists the registry to disk
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush()
}

// flush persists to disk without locking (assumes lock is held)
func (s *Store) flush() error {
	if !s.dirty {
		return nil
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(s.sets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Write to temporary file first, then rename (atomic write)
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename registry file: %w", err)
	}

	s.dirty = false

	return nil
}

// copySet creates a deep copy of a set config
func (s *Store) copySet(config *SetConfig) *SetConfig {
	copied := *config

	if len(config.TrackedBins) > 0 {
		copied.TrackedBins = make([]string, len(config.TrackedBins))
		copy(copied.TrackedBins, config.TrackedBins)
	}

	if config.Schema != nil {
		schemaCopy := *config.Schema
		if len(config.Schema.Definition) > 0 {
			schemaCopy.Definition = make([]byte, len(config.Schema.Definition))
			copy(schemaCopy.Definition, config.Schema.Definition)
		}
		copied.Schema = &schemaCopy
	}

	return &copied
}
