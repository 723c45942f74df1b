package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// Registry resolves machines across several loaders.
// Loaders are consulted in registration order; the first one that knows a name wins.
type Registry struct {
	mu      sync.RWMutex
	loaders []ports.MachineLoader
}

var _ ports.MachineLoader = (*Registry)(nil)

// NewRegistry creates a registry over the given loaders.
func NewRegistry(loaders ...ports.MachineLoader) *Registry {
	return &Registry{
		loaders: loaders,
	}
}

// Register appends a loader. It is consulted after the ones already registered.
func (r *Registry) Register(loader ports.MachineLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders = append(r.loaders, loader)
}

func (r *Registry) snapshot() []ports.MachineLoader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ports.MachineLoader(nil), r.loaders...)
}

// GetMachine looks up a machine by name.
// Returns an error wrapping domain.ErrMachineNotFound if no loader knows it.
func (r *Registry) GetMachine(ctx context.Context, name string) (*domain.Machine, error) {
	for _, l := range r.snapshot() {
		m, err := l.GetMachine(ctx, name)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, domain.ErrMachineNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

// ListMachines returns the union of every loader's names, sorted and without duplicates.
func (r *Registry) ListMachines(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, l := range r.snapshot() {
		list, err := l.ListMachines(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range list {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
