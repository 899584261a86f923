package record

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/expirebin/engine/internal/logger"
	"github.com/rs/zerolog"
)

const keySeparator = "/"

// recordEnvelope is the persisted form of one record
type recordEnvelope struct {
	Bins       map[string][]byte
	Generation uint64
	UpdatedAt  time.Time
}

// Store is a pebble-backed record store. It owns whole records and exposes
// the per-key atomic execution primitive (Apply/ApplySteps) that record
// operations run inside. All reads and writes of one record happen under
// that record's key lock.
type Store struct {
	db     *pebble.DB
	locks  *keyLocks
	log    zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) a record store at dir
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	return &Store{
		db:    db,
		locks: newKeyLocks(),
		log:   logger.WithComponent("record"),
	}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close record store: %w", err)
	}
	return nil
}

// validateKey rejects keys the path encoding cannot represent
func validateKey(key Key) error {
	for _, part := range []struct {
		field string
		value string
	}{
		{"namespace", key.Namespace},
		{"set", key.Set},
		{"id", key.ID},
	} {
		if part.value == "" {
			return InvalidKeyError{Key: key, Reason: part.field + " cannot be empty"}
		}
		if strings.Contains(part.value, keySeparator) {
			return InvalidKeyError{Key: key, Reason: part.field + " cannot contain " + keySeparator}
		}
	}
	return nil
}

// encodeKey encodes a record key to its storage form
func encodeKey(key Key) []byte {
	return []byte(key.String())
}

// decodeKey decodes a storage key back into a record key
func decodeKey(encoded []byte) (Key, error) {
	parts := strings.SplitN(string(encoded), keySeparator, 3)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("malformed storage key: %q", encoded)
	}
	return Key{Namespace: parts[0], Set: parts[1], ID: parts[2]}, nil
}

// encodeRecord encodes a record envelope to bytes using GOB
func encodeRecord(env *recordEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeRecord decodes bytes to a record envelope using GOB
func decodeRecord(data []byte) (*recordEnvelope, error) {
	var env recordEnvelope
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &env, nil
}

// Apply executes op atomically against the record at key. The record's bins
// are loaded under the key lock, op runs with the execution-time clock, and
// the record is persisted if op reports a mutation. With createIfMissing
// false a missing record is a RecordNotFoundError.
func (s *Store) Apply(ctx context.Context, key Key, createIfMissing bool, op ApplyFunc) error {
	_, err := s.ApplySteps(ctx, key, createIfMissing, []ApplyFunc{op})
	return err
}

// ApplySteps executes steps in order against the record at key, all under
// the same key lock. Each mutating step is persisted individually: a storage
// failure at step N leaves steps 0..N-1 durably applied. Returns the number
// of fully applied steps.
func (s *Store) ApplySteps(ctx context.Context, key Key, createIfMissing bool, steps []ApplyFunc) (int, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, StoreClosedError{}
	}
	s.mu.RUnlock()

	lockKey := key.String()
	kl := s.locks.acquire(lockKey)
	defer s.locks.release(lockKey, kl)

	env, err := s.load(key)
	if err != nil {
		if errors.As(err, &RecordNotFoundError{}) && createIfMissing {
			env = &recordEnvelope{Bins: make(map[string][]byte)}
		} else {
			return 0, err
		}
	}

	applied := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		now := time.Now()
		mutated, err := step(now, env.Bins)
		if err != nil {
			return applied, err
		}

		if mutated {
			env.Generation++
			env.UpdatedAt = now
			if err := s.persist(key, env); err != nil {
				return applied, err
			}
		}
		applied++
	}

	return applied, nil
}

// load reads the record envelope at key. Callers must hold the key lock.
func (s *Store) load(key Key) (*recordEnvelope, error) {
	data, closer, err := s.db.Get(encodeKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, RecordNotFoundError{Key: key}
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	defer closer.Close()

	// Copy value bytes (closer will free the original)
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	env, err := decodeRecord(dataCopy)
	if err != nil {
		return nil, err
	}
	if env.Bins == nil {
		env.Bins = make(map[string][]byte)
	}
	return env, nil
}

// persist writes the record envelope at key. Callers must hold the key lock.
func (s *Store) persist(key Key, env *recordEnvelope) error {
	encoded, err := encodeRecord(env)
	if err != nil {
		return err
	}
	if err := s.db.Set(encodeKey(key), encoded, &pebble.WriteOptions{}); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Exists reports whether a record exists at key
func (s *Store) Exists(ctx context.Context, key Key) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, closer, err := s.db.Get(encodeKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	closer.Close()

	return true, nil
}

// Delete removes the whole record at key. Deleting a missing record is not
// an error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lockKey := key.String()
	kl := s.locks.acquire(lockKey)
	defer s.locks.release(lockKey, kl)

	if err := s.db.Delete(encodeKey(key), &pebble.WriteOptions{}); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}
