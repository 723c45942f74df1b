package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func snapshot(runID string) *domain.Snapshot {
	return &domain.Snapshot{
		RunID:   runID,
		Machine: library.UnaryIncrement(),
		State:   "start",
		Tape:    domain.SplitTape("11"),
		Status:  domain.StatusRunning,
	}
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunRunStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_ReservedLookingIDs(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	ids := []string{"a", "index", "lock:a"}
	for _, id := range ids {
		require.NoError(t, store.Save(ctx, id, snapshot(id)), id)
	}

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, runs)

	for _, id := range ids {
		snap, err := store.Load(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, id, snap.RunID)
	}

	require.NoError(t, store.Delete(ctx, "index"))
	runs, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "lock:a"}, runs)
}

func TestRedisStore_LockerSharesPrefix(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, redis.DefaultPrefix)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "lock:a", snapshot("lock:a")))
	unlock, err := locker.Lock(ctx, "a", time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	snap, err := store.Load(ctx, "lock:a")
	require.NoError(t, err)
	assert.Equal(t, "lock:a", snap.RunID)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	runID := "run-ttl"

	require.NoError(t, store.Save(ctx, runID, snapshot(runID)))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, runs, runID)

	// Key expiration
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	// The index is pruned against the wall clock, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	runs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	runID := "my-run"

	require.NoError(t, store.Save(ctx, runID, snapshot(runID)))

	assert.True(t, mr.Exists("custom:app:run:my-run"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, runs, runID)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"run:bad", "{nope"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "bad")
	assert.ErrorContains(t, err, "unmarshal")
}
