package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke race conditions if locking is missing.
type slowStore struct {
	*memory.Store
	mu      sync.Mutex
	active  int
	overlap bool
}

func (s *slowStore) Save(ctx context.Context, runID string, snap *domain.Snapshot) error {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond) // Simulate IO

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return s.Store.Save(ctx, runID, snap)
}

func TestManager_SerializesSameRun(t *testing.T) {
	store := &slowStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Save(ctx, "race-test", &domain.Snapshot{RunID: "race-test"}))
		}()
	}
	wg.Wait()

	assert.False(t, store.overlap, "saves of the same run must not overlap")
}

func TestManager_StartAndResume(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	eng, err := manager.Start(ctx, "mult", library.BinaryMultiplier(), domain.SplitTape("11_11"), turing.WithMaxSteps(40))
	assert.ErrorIs(t, err, domain.ErrStepLimit)
	require.NotNil(t, eng)
	assert.Equal(t, 40, eng.Steps())

	snap, err := manager.Load(ctx, "mult")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, snap.Status)
	assert.Equal(t, "mult", snap.RunID)

	eng, err = manager.Resume(ctx, "mult")
	require.NoError(t, err)
	assert.Equal(t, 92, eng.Steps())
	assert.Equal(t, "_1001_______", eng.TapeString())

	snap, err = manager.Load(ctx, "mult")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHalted, snap.Status)
	assert.Len(t, snap.Trace, 92)
}

func TestManager_StartPersistsRejection(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := manager.Start(ctx, "bad", library.BinaryMultiplier(), domain.SplitTape("11*11"))
	assert.ErrorIs(t, err, domain.ErrNoTransition)

	snap, err := manager.Load(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, snap.Status)
	assert.Len(t, snap.Trace, 4)
}

func TestManager_ResumeMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Resume(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

type recordingLocker struct {
	keys     []string
	released int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("busy")
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	_, err := manager.Start(context.Background(), "r1", library.UnaryIncrement(), domain.SplitTape("1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, locker.keys)
	assert.Equal(t, 1, locker.released)

	manager = session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))
	err = manager.Save(context.Background(), "r2", &domain.Snapshot{})
	assert.ErrorContains(t, err, "distributed lock")
}

func TestManager_EmptyRunID(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	assert.Error(t, manager.Save(context.Background(), "", &domain.Snapshot{}))
}
