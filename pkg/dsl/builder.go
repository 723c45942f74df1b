package dsl

import (
	"fmt"
	"slices"

	"github.com/aretw0/turing/pkg/domain"
)

// Builder manages the machine construction.
type Builder struct {
	name    string
	blank   domain.Symbol
	input   []domain.Symbol
	tape    []domain.Symbol
	start   domain.State
	final   []domain.State
	states  []domain.State
	symbols []domain.Symbol
	rules   []domain.Transition
}

// New creates a new machine builder. The blank symbol defaults to "_".
func New(name string) *Builder {
	return &Builder{name: name, blank: "_"}
}

// Blank sets the blank symbol.
func (b *Builder) Blank(sym string) *Builder {
	b.blank = domain.Symbol(sym)
	return b
}

// Input sets the input alphabet.
func (b *Builder) Input(symbols ...string) *Builder {
	b.input = toSymbols(symbols)
	for _, s := range b.input {
		b.seeSymbol(s)
	}
	return b
}

// Tape sets the tape alphabet explicitly, overriding the derived one.
func (b *Builder) Tape(symbols ...string) *Builder {
	b.tape = toSymbols(symbols)
	return b
}

// Start sets the initial state.
func (b *Builder) Start(state string) *Builder {
	b.start = domain.State(state)
	b.seeState(b.start)
	return b
}

// Final declares the halting states.
func (b *Builder) Final(states ...string) *Builder {
	for _, s := range states {
		b.final = append(b.final, domain.State(s))
		b.seeState(domain.State(s))
	}
	return b
}

// State declares a state and returns a builder for its rules.
func (b *Builder) State(name string) *StateBuilder {
	b.seeState(domain.State(name))
	return &StateBuilder{builder: b, state: domain.State(name)}
}

// Build assembles and validates the machine.
func (b *Builder) Build() (*domain.Machine, error) {
	tape := b.tape
	if len(tape) == 0 {
		tape = slices.Clone(b.input)
		for _, s := range b.symbols {
			if s != b.blank && !slices.Contains(tape, s) {
				tape = append(tape, s)
			}
		}
		if !slices.Contains(tape, b.blank) {
			tape = append(tape, b.blank)
		}
	}

	m := &domain.Machine{
		Name:          b.name,
		States:        slices.Clone(b.states),
		InputAlphabet: slices.Clone(b.input),
		TapeAlphabet:  tape,
		Blank:         b.blank,
		Initial:       b.start,
		Final:         slices.Clone(b.final),
		Transitions:   slices.Clone(b.rules),
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build machine %q: %w", b.name, err)
	}
	return m, nil
}

// MustBuild is like Build but panics on error. Intended for static definitions.
func (b *Builder) MustBuild() *domain.Machine {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

func (b *Builder) seeState(s domain.State) {
	if !slices.Contains(b.states, s) {
		b.states = append(b.states, s)
	}
}

func (b *Builder) seeSymbol(s domain.Symbol) {
	if !slices.Contains(b.symbols, s) {
		b.symbols = append(b.symbols, s)
	}
}

func toSymbols(in []string) []domain.Symbol {
	out := make([]domain.Symbol, len(in))
	for i, s := range in {
		out[i] = domain.Symbol(s)
	}
	return out
}
