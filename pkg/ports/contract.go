package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractMachine() *domain.Machine {
	return &domain.Machine{
		Name:          "contract",
		States:        []domain.State{"q0", "qf"},
		InputAlphabet: []domain.Symbol{"1"},
		TapeAlphabet:  []domain.Symbol{"1", "_"},
		Blank:         "_",
		Initial:       "q0",
		Final:         []domain.State{"qf"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "1", Next: "q0", Write: "1", Move: domain.Right},
			{From: "q0", Read: "_", Next: "qf", Write: "1", Move: domain.Left},
		},
	}
}

func contractSnapshot(runID string) *domain.Snapshot {
	return &domain.Snapshot{
		RunID:   runID,
		Machine: contractMachine(),
		State:   "q0",
		Tape:    domain.SplitTape("11_"),
		Head:    2,
		Steps:   2,
		Status:  domain.StatusSuspended,
		Trace: []domain.TraceEntry{
			{Step: 1, State: "q0", Read: "1", Tape: "11", Head: 1},
			{Step: 2, State: "q0", Read: "1", Tape: "11_", Head: 2},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot(runID)

		err := store.Save(ctx, runID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, snap.Tape, loaded.Tape)
		assert.Equal(t, snap.Head, loaded.Head)
		assert.Equal(t, snap.Steps, loaded.Steps)
		assert.Equal(t, snap.Status, loaded.Status)
		assert.Equal(t, snap.Trace, loaded.Trace)
		require.NotNil(t, loaded.Machine)
		assert.Equal(t, snap.Machine.Transitions, loaded.Machine.Transitions)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.Tape[0] = "_"

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.Symbol("1"), again.Tape[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, contractSnapshot(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, contractSnapshot(id1))
		_ = store.Save(ctx, id2, contractSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

// RunMachineLoaderContract verifies that a MachineLoader serves exactly the
// expected machines and reports unknown names with domain.ErrMachineNotFound.
func RunMachineLoaderContract(t *testing.T, loader MachineLoader, expected []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMachine_Success", func(t *testing.T) {
		for _, name := range expected {
			m, err := loader.GetMachine(ctx, name)
			require.NoError(t, err, name)
			assert.NoError(t, m.Validate(), name)
		}
	})

	t.Run("GetMachine_NotFound", func(t *testing.T) {
		_, err := loader.GetMachine(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("ListMachines", func(t *testing.T) {
		names, err := loader.ListMachines(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, expected, names)
	})
}
