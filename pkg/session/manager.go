package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed run lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to persisted runs, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.RunStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new run Manager with the given persistence store.
func NewManager(store ports.RunStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(runID) after unlocking.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// Start runs machine over tape under runID and persists the resulting snapshot,
// whatever the outcome. The returned error is the run error (or a persistence failure).
func (m *Manager) Start(ctx context.Context, runID string, machine *domain.Machine, tape []domain.Symbol, opts ...turing.Option) (*turing.Engine, error) {
	var eng *turing.Engine
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		var err error
		eng, err = turing.New(machine, tape, append(opts, turing.WithRunID(runID))...)
		if err != nil {
			return err
		}
		return m.runAndSave(ctx, runID, eng)
	})
	return eng, err
}

// Resume loads runID, continues it until it halts, fails or runs out of budget,
// and persists the new snapshot.
func (m *Manager) Resume(ctx context.Context, runID string, opts ...turing.Option) (*turing.Engine, error) {
	var eng *turing.Engine
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		snap, err := m.store.Load(ctx, runID)
		if err != nil {
			return err
		}
		eng, err = turing.Resume(snap, opts...)
		if err != nil {
			return err
		}
		return m.runAndSave(ctx, runID, eng)
	})
	return eng, err
}

func (m *Manager) runAndSave(ctx context.Context, runID string, eng *turing.Engine) error {
	runErr := eng.Run(ctx)
	// Persist even when ctx was cancelled so the run can be resumed.
	saveCtx := context.WithoutCancel(ctx)
	if err := m.store.Save(saveCtx, runID, eng.Snapshot()); err != nil {
		m.logger.Error("failed to persist run", "run_id", runID, "err", err)
		return errors.Join(runErr, fmt.Errorf("failed to save run %s: %w", runID, err))
	}
	m.logger.Debug("run persisted", "run_id", runID, "status", eng.Status(), "steps", eng.Steps())
	return runErr
}

// Load retrieves a run snapshot from the store.
func (m *Manager) Load(ctx context.Context, runID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, runID)
		return err
	})
	return snap, err
}

// Save persists a run snapshot.
func (m *Manager) Save(ctx context.Context, runID string, snap *domain.Snapshot) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Save(ctx, runID, snap)
	})
}

// Delete removes the run from the store.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Delete(ctx, runID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying run store.
func (m *Manager) Store() ports.RunStore {
	return m.store
}

// WithLock executes a function while holding the lock for the run.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, runID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"run_id", runID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
