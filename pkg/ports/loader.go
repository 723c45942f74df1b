package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// MachineLoader defines how surfaces (CLI, HTTP, MCP) resolve machine descriptions.
type MachineLoader interface {
	// GetMachine returns the machine registered under name.
	// Returns an error wrapping domain.ErrMachineNotFound when there is none.
	GetMachine(ctx context.Context, name string) (*domain.Machine, error)

	// ListMachines returns the available machine names in lexical order.
	ListMachines(ctx context.Context) ([]string, error)
}
