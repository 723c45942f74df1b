package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Library(t *testing.T) {
	for _, m := range library.All() {
		r := Validate(m)
		assert.True(t, r.OK(), "%s: %v", m.Name, r.Errors)
		assert.Empty(t, r.Warnings, m.Name)
		assert.NoError(t, r.Err())
	}
}

func TestValidate_BrokenReferences(t *testing.T) {
	m := library.UnaryIncrement()
	m.Transitions = append(m.Transitions,
		domain.Transition{From: "ghost", Read: "1", Next: "halt", Write: "1", Move: domain.Right},
		domain.Transition{From: "init", Read: "x", Next: "nowhere", Write: "y", Move: domain.Left},
	)
	m.InputAlphabet = append(m.InputAlphabet, "2")

	r := Validate(m)
	require.False(t, r.OK())
	joined := strings.Join(r.Errors, "\n")
	assert.Contains(t, joined, "source state 'ghost' is not declared")
	assert.Contains(t, joined, "target state 'nowhere' is not declared")
	assert.Contains(t, joined, "read symbol 'x'")
	assert.Contains(t, joined, "written symbol 'y'")
	assert.Contains(t, joined, "input symbol '2'")
	assert.ErrorContains(t, r.Err(), "errors:")
}

func TestValidate_Reachability(t *testing.T) {
	m := &domain.Machine{
		States:        []domain.State{"q0", "q1", "island", "qf", "qx"},
		InputAlphabet: []domain.Symbol{"1"},
		TapeAlphabet:  []domain.Symbol{"1", "_"},
		Blank:         "_",
		Initial:       "q0",
		Final:         []domain.State{"qf", "qx"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "1", Next: "q1", Write: "1", Move: domain.Right},
			{From: "q0", Read: "_", Next: "qf", Write: "_", Move: domain.Right},
			{From: "island", Read: "1", Next: "qx", Write: "1", Move: domain.Right},
			{From: "qf", Read: "1", Next: "q0", Write: "1", Move: domain.Right},
		},
	}

	r := Validate(m)
	assert.True(t, r.OK(), r.Errors)
	joined := strings.Join(r.Warnings, "\n")
	assert.Contains(t, joined, "state 'island' is unreachable")
	assert.Contains(t, joined, "state 'qx' is unreachable")
	assert.Contains(t, joined, "state 'q1' has no outgoing transitions")
	assert.Contains(t, joined, "leaves final state 'qf'")

	reach := Reachable(m)
	assert.True(t, reach["q1"])
	assert.False(t, reach["island"])
}

func TestValidate_NoReachableFinal(t *testing.T) {
	m := &domain.Machine{
		States:       []domain.State{"q0", "qf"},
		TapeAlphabet: []domain.Symbol{"_"},
		Blank:        "_",
		Initial:      "q0",
		Final:        []domain.State{"qf"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "_", Next: "q0", Write: "_", Move: domain.Right},
		},
	}
	r := Validate(m)
	assert.Contains(t, strings.Join(r.Errors, "\n"), "no final state is reachable")
}

func TestValidate_Nil(t *testing.T) {
	assert.False(t, Validate(nil).OK())
}
