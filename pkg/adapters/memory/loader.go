package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
)

// Loader implements ports.MachineLoader using an in-memory map.
type Loader struct {
	machines map[string]*domain.Machine
}

// NewLoader creates a loader serving the given machines, keyed by their name.
func NewLoader(machines ...*domain.Machine) (*Loader, error) {
	l := &Loader{machines: make(map[string]*domain.Machine, len(machines))}
	for _, m := range machines {
		if m == nil || m.Name == "" {
			return nil, fmt.Errorf("machine missing name")
		}
		if _, dup := l.machines[m.Name]; dup {
			return nil, fmt.Errorf("duplicate machine name %q", m.Name)
		}
		l.machines[m.Name] = m.Clone()
	}
	return l, nil
}

// NewLibraryLoader serves the built-in machines.
func NewLibraryLoader() *Loader {
	l, _ := NewLoader(library.All()...)
	return l
}

// GetMachine returns a copy of the named machine.
func (l *Loader) GetMachine(ctx context.Context, name string) (*domain.Machine, error) {
	m, ok := l.machines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return m.Clone(), nil
}

// ListMachines returns all machine names.
func (l *Loader) ListMachines(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.machines))
	for k := range l.machines {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
