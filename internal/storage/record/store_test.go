package record

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func readBins(t *testing.T, store *Store, key Key) Bins {
	t.Helper()
	var snapshot Bins
	err := store.Apply(context.Background(), key, false, func(now time.Time, bins Bins) (bool, error) {
		snapshot = bins.Clone()
		return false, nil
	})
	require.NoError(t, err)
	return snapshot
}

func TestStore_ApplyCreatesRecord(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
		bins["name"] = []byte("alice")
		return true, nil
	})
	require.NoError(t, err)

	bins := readBins(t, store, key)
	assert.Equal(t, []byte("alice"), bins["name"])
}

func TestStore_ApplyMissingRecord(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.Apply(ctx, NewKey("test", "users", "missing"), false, func(now time.Time, bins Bins) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.IsType(t, RecordNotFoundError{}, err)
}

func TestStore_ApplyInvalidKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	noop := func(now time.Time, bins Bins) (bool, error) { return false, nil }

	err := store.Apply(ctx, NewKey("", "users", "u1"), true, noop)
	assert.IsType(t, InvalidKeyError{}, err)

	err = store.Apply(ctx, NewKey("test", "us/ers", "u1"), true, noop)
	assert.IsType(t, InvalidKeyError{}, err)
}

func TestStore_ApplyOpError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	opErr := errors.New("op failed")
	err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
		bins["name"] = []byte("alice")
		return true, opErr
	})
	require.ErrorIs(t, err, opErr)

	// Failed op must not have persisted anything
	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_ApplySteps_PartialApplication(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	stepErr := errors.New("step failed")
	steps := []ApplyFunc{
		func(now time.Time, bins Bins) (bool, error) {
			bins["a"] = []byte("1")
			return true, nil
		},
		func(now time.Time, bins Bins) (bool, error) {
			bins["b"] = []byte("2")
			return true, nil
		},
		func(now time.Time, bins Bins) (bool, error) {
			return false, stepErr
		},
		func(now time.Time, bins Bins) (bool, error) {
			bins["c"] = []byte("3")
			return true, nil
		},
	}

	applied, err := store.ApplySteps(ctx, key, true, steps)
	require.ErrorIs(t, err, stepErr)
	assert.Equal(t, 2, applied)

	// Steps before the failure stay applied, the rest never ran
	bins := readBins(t, store, key)
	assert.Equal(t, []byte("1"), bins["a"])
	assert.Equal(t, []byte("2"), bins["b"])
	assert.NotContains(t, bins, "c")
}

func TestStore_ExistsDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
		bins["name"] = []byte("alice")
		return true, nil
	})
	require.NoError(t, err)

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error
	assert.NoError(t, store.Delete(ctx, key))
}

func TestStore_PerKeyMutualExclusion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "counters", "c1")

	err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
		bins["n"] = []byte("0")
		return true, nil
	})
	require.NoError(t, err)

	const workers = 16
	const increments = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				err := store.Apply(ctx, key, false, func(now time.Time, bins Bins) (bool, error) {
					n, err := strconv.Atoi(string(bins["n"]))
					if err != nil {
						return false, err
					}
					bins["n"] = []byte(strconv.Itoa(n + 1))
					return true, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	bins := readBins(t, store, key)
	assert.Equal(t, strconv.Itoa(workers*increments), string(bins["n"]))
}

func TestStore_Scan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := NewKey("test", "users", fmt.Sprintf("u%d", i))
		err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
			bins["name"] = []byte(fmt.Sprintf("user-%d", i))
			return true, nil
		})
		require.NoError(t, err)
	}

	// Records in other sets and namespaces must not be visited
	other := NewKey("test", "sessions", "s1")
	err := store.Apply(ctx, other, true, func(now time.Time, bins Bins) (bool, error) {
		bins["x"] = []byte("y")
		return true, nil
	})
	require.NoError(t, err)

	var visited []string
	stats, err := store.Scan(ctx, "test", "users", func(key Key, meta Metadata, bins Bins) error {
		visited = append(visited, key.ID)
		assert.NotZero(t, meta.Generation)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Visited)
	assert.Equal(t, 0, stats.Failed)
	assert.Len(t, visited, 5)
	assert.NotContains(t, visited, "s1")
}

func TestStore_ScanContinuesPastVisitFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		key := NewKey("test", "users", id)
		err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
			bins["name"] = []byte(id)
			return true, nil
		})
		require.NoError(t, err)
	}

	stats, err := store.Scan(ctx, "test", "users", func(key Key, meta Metadata, bins Bins) error {
		if key.ID == "u2" {
			return errors.New("visit failed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Visited)
	assert.Equal(t, 1, stats.Failed)
}

func TestStore_ScanSnapshotIsolation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
		bins["name"] = []byte("alice")
		return true, nil
	})
	require.NoError(t, err)

	_, err = store.Scan(ctx, "test", "users", func(key Key, meta Metadata, bins Bins) error {
		// Mutating the snapshot must not affect the stored record
		bins["name"] = []byte("mutated")
		return nil
	})
	require.NoError(t, err)

	bins := readBins(t, store, key)
	assert.Equal(t, []byte("alice"), bins["name"])
}

func TestStore_GenerationIncrements(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := NewKey("test", "users", "u1")

	for i := 0; i < 3; i++ {
		err := store.Apply(ctx, key, true, func(now time.Time, bins Bins) (bool, error) {
			bins["n"] = []byte(strconv.Itoa(i))
			return true, nil
		})
		require.NoError(t, err)
	}

	var gen uint64
	_, err := store.Scan(ctx, "test", "users", func(key Key, meta Metadata, bins Bins) error {
		gen = meta.Generation
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), gen)
}

func TestStore_ClosedStore(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Apply(context.Background(), NewKey("test", "users", "u1"), true,
		func(now time.Time, bins Bins) (bool, error) { return false, nil })
	assert.IsType(t, StoreClosedError{}, err)
}
