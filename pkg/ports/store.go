package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// RunStore defines the interface for persisting run snapshots.
// This enables "Stop & Resume" of long computations.
type RunStore interface {
	// Save persists the snapshot for a given run ID.
	Save(ctx context.Context, runID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
