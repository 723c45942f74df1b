package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryLoader_Contract(t *testing.T) {
	ports.RunMachineLoaderContract(t, memory.NewLibraryLoader(), library.Names())
}

func TestLoader_Isolation(t *testing.T) {
	loader, err := memory.NewLoader(library.UnaryIncrement())
	require.NoError(t, err)

	m, err := loader.GetMachine(context.Background(), "unary-increment")
	require.NoError(t, err)
	m.Transitions[0].Write = "_"

	again, err := loader.GetMachine(context.Background(), "unary-increment")
	require.NoError(t, err)
	assert.Equal(t, "1", string(again.Transitions[0].Write))
}

func TestNewLoader_Invalid(t *testing.T) {
	_, err := memory.NewLoader(library.UnaryIncrement(), library.UnaryIncrement())
	assert.ErrorContains(t, err, "duplicate")

	m := library.UnaryIncrement()
	m.Name = ""
	_, err = memory.NewLoader(m)
	assert.Error(t, err)
}
