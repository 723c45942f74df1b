package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(context.Context, string, *domain.Snapshot) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.Snapshot, error) {
	return nil, domain.ErrRunNotFound
}
func (nopStore) Delete(context.Context, string) error   { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("run-%d", i)
		_ = mgr.Save(ctx, id, &domain.Snapshot{})
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
