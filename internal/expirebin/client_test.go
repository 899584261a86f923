package expirebin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

func setupTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	store, err := record.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return NewClient(store, opts...)
}

func TestClient_PutGetRoundTrip(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	status, err := client.Put(ctx, key, "session", []byte("tok-123"), time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, status)

	values, err := client.Get(ctx, key, "session")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, []byte("tok-123"), values[0])
}

func TestClient_GetMasksExpiredBins(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Put(ctx, key, "short", []byte("soon gone"), 30*time.Millisecond, true)
	require.NoError(t, err)
	_, err = client.Put(ctx, key, "long", []byte("stays"), time.Hour, true)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	values, err := client.Get(ctx, key, "short", "long")
	require.NoError(t, err)
	assert.Nil(t, values[0])
	assert.Equal(t, []byte("stays"), values[1])

	// The expired bin is masked but still physically present
	removed, err := client.Clean(ctx, key, "short", "long")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestClient_GetMissingRecord(t *testing.T) {
	client := setupTestClient(t)

	_, err := client.Get(context.Background(), record.NewKey("prod", "users", "nope"), "a")
	assert.ErrorAs(t, err, &record.RecordNotFoundError{})
}

func TestClient_PutPlain(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	status, err := client.Put(ctx, key, "name", []byte("alice"), 0, false)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, status)

	// Plain bins never expire, whatever the elapsed time
	values, err := client.Get(ctx, key, "name")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), values[0])

	_, _, err = client.TTL(ctx, key, "name")
	assert.ErrorAs(t, err, &BinNotTrackedError{})
}

func TestClient_PutNeverDowngrades(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Put(ctx, key, "a", []byte("v1"), time.Hour, true)
	require.NoError(t, err)

	// create=false against a tracked bin updates it in place
	status, err := client.Put(ctx, key, "a", []byte("v2"), 2*time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, status)

	remaining, never, err := client.TTL(ctx, key, "a")
	require.NoError(t, err)
	assert.False(t, never)
	assert.Greater(t, remaining, time.Hour)

	values, err := client.Get(ctx, key, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), values[0])
}

func TestClient_PutInvalidKey(t *testing.T) {
	client := setupTestClient(t)

	status, err := client.Put(context.Background(), record.Key{}, "a", []byte("v"), time.Hour, true)
	assert.ErrorAs(t, err, &record.InvalidKeyError{})
	assert.Equal(t, OpStatusFailed, status)
}

func TestClient_Puts(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	result, err := client.Puts(ctx, key,
		PutEntry{Bin: "a", Value: []byte("1"), TTL: time.Hour},
		PutEntry{Bin: "b", Value: []byte("2"), TTL: NoExpiry},
		PutEntry{Bin: "c", Value: []byte("3")},
	)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, result.Status)
	require.Len(t, result.Entries, 3)
	for _, entry := range result.Entries {
		assert.True(t, entry.Applied)
		assert.NoError(t, entry.Err)
	}

	values, err := client.Get(ctx, key, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), values[0])
	assert.Equal(t, []byte("2"), values[1])
	assert.Equal(t, []byte("3"), values[2])

	// A zero-TTL entry writes plain
	_, _, err = client.TTL(ctx, key, "c")
	assert.ErrorAs(t, err, &BinNotTrackedError{})

	_, never, err := client.TTL(ctx, key, "b")
	require.NoError(t, err)
	assert.True(t, never)
}

func TestClient_PutsDuplicateBinLastWriteWins(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Puts(ctx, key,
		PutEntry{Bin: "a", Value: []byte("first"), TTL: time.Hour},
		PutEntry{Bin: "a", Value: []byte("second"), TTL: time.Hour},
	)
	require.NoError(t, err)

	values, err := client.Get(ctx, key, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), values[0])
}

// brokenExecutor fails every step at and after failAt, leaving earlier
// steps applied.
type brokenExecutor struct {
	bins   record.Bins
	failAt int
}

func (e *brokenExecutor) Apply(ctx context.Context, key record.Key, createIfMissing bool, op record.ApplyFunc) error {
	_, err := e.ApplySteps(ctx, key, createIfMissing, []record.ApplyFunc{op})
	return err
}

func (e *brokenExecutor) ApplySteps(ctx context.Context, key record.Key, createIfMissing bool, steps []record.ApplyFunc) (int, error) {
	applied := 0
	for i, step := range steps {
		if i >= e.failAt {
			return applied, errors.New("storage fault")
		}
		if _, err := step(time.Now(), e.bins); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func TestClient_PutsPartialFailure(t *testing.T) {
	exec := &brokenExecutor{bins: record.Bins{}, failAt: 2}
	client := NewClient(exec)
	key := record.NewKey("prod", "users", "u1")

	result, err := client.Puts(context.Background(), key,
		PutEntry{Bin: "a", Value: []byte("1"), TTL: time.Hour},
		PutEntry{Bin: "b", Value: []byte("2"), TTL: time.Hour},
		PutEntry{Bin: "c", Value: []byte("3"), TTL: time.Hour},
		PutEntry{Bin: "d", Value: []byte("4"), TTL: time.Hour},
	)
	require.Error(t, err)
	assert.Equal(t, OpStatusFailed, result.Status)

	// Entries before the fault stay applied, there is no rollback
	assert.True(t, result.Entries[0].Applied)
	assert.True(t, result.Entries[1].Applied)
	assert.False(t, result.Entries[2].Applied)
	assert.Error(t, result.Entries[2].Err)
	assert.False(t, result.Entries[3].Applied)
	assert.NoError(t, result.Entries[3].Err)

	assert.Contains(t, exec.bins, "a")
	assert.Contains(t, exec.bins, "b")
	assert.NotContains(t, exec.bins, "c")
}

func TestClient_TouchExtendsExpiry(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Put(ctx, key, "session", []byte("tok"), 40*time.Millisecond, true)
	require.NoError(t, err)

	result, err := client.Touch(ctx, key, TouchEntry{Bin: "session", TTL: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, result.Status)
	assert.True(t, result.Entries[0].Applied)

	time.Sleep(60 * time.Millisecond)

	values, err := client.Get(ctx, key, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), values[0], "touched bin outlives its original TTL")
}

func TestClient_TouchNoOps(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Put(ctx, key, "plain", []byte("raw"), 0, false)
	require.NoError(t, err)
	_, err = client.Put(ctx, key, "tracked", []byte("v"), time.Hour, true)
	require.NoError(t, err)

	result, err := client.Touch(ctx, key,
		TouchEntry{Bin: "missing", TTL: time.Hour},
		TouchEntry{Bin: "plain", TTL: time.Hour},
		TouchEntry{Bin: "tracked", TTL: 2 * time.Hour},
	)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, result.Status)
	assert.False(t, result.Entries[0].Applied)
	assert.False(t, result.Entries[1].Applied)
	assert.True(t, result.Entries[2].Applied)

	// The no-ops neither create bins nor disturb existing ones
	values, err := client.Get(ctx, key, "missing", "plain")
	require.NoError(t, err)
	assert.Nil(t, values[0])
	assert.Equal(t, []byte("raw"), values[1])
}

func TestClient_TouchMissingRecord(t *testing.T) {
	client := setupTestClient(t)

	result, err := client.Touch(context.Background(), record.NewKey("prod", "users", "nope"),
		TouchEntry{Bin: "a", TTL: time.Hour})
	assert.ErrorAs(t, err, &record.RecordNotFoundError{})
	assert.Equal(t, OpStatusFailed, result.Status)
}

func TestClient_TTL(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Put(ctx, key, "a", []byte("v"), time.Hour, true)
	require.NoError(t, err)
	_, err = client.Put(ctx, key, "b", []byte("v"), NoExpiry, true)
	require.NoError(t, err)

	remaining, never, err := client.TTL(ctx, key, "a")
	require.NoError(t, err)
	assert.False(t, never)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	_, never, err = client.TTL(ctx, key, "b")
	require.NoError(t, err)
	assert.True(t, never)

	_, _, err = client.TTL(ctx, key, "missing")
	assert.ErrorAs(t, err, &BinNotTrackedError{})
}

func TestClient_Clean(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	key := record.NewKey("prod", "users", "u1")

	_, err := client.Puts(ctx, key,
		PutEntry{Bin: "short", Value: []byte("x"), TTL: 20 * time.Millisecond},
		PutEntry{Bin: "long", Value: []byte("y"), TTL: time.Hour},
		PutEntry{Bin: "plain", Value: []byte("z")},
	)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	removed, err := client.Clean(ctx, key, "short", "long", "plain", "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	values, err := client.Get(ctx, key, "short", "long", "plain")
	require.NoError(t, err)
	assert.Nil(t, values[0])
	assert.Equal(t, []byte("y"), values[1])
	assert.Equal(t, []byte("z"), values[2])

	// Cleaning again removes nothing
	removed, err = client.Clean(ctx, key, "short", "long", "plain")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestClient_SchemaValidation(t *testing.T) {
	registry, err := metastore.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, registry.CreateSet(&metastore.SetConfig{
		Namespace: "prod",
		Set:       "profiles",
		Schema: &metastore.SchemaRef{
			ID:         "profile",
			Definition: []byte(`{"type":"object","required":["name"]}`),
		},
	}))

	client := setupTestClient(t, WithRegistry(registry))
	ctx := context.Background()
	key := record.NewKey("prod", "profiles", "u1")

	status, err := client.Put(ctx, key, "profile", []byte(`{"name":"alice"}`), time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, status)

	status, err = client.Put(ctx, key, "profile", []byte(`{"age":3}`), time.Hour, true)
	assert.ErrorAs(t, err, &SchemaViolationError{})
	assert.Equal(t, OpStatusFailed, status)

	// Sets without a registered config are unconstrained
	status, err = client.Put(ctx, record.NewKey("prod", "other", "u1"), "a", []byte("free-form"), time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, OpStatusOK, status)
}
