package domain

import (
	"fmt"
	"slices"
)

// Machine is the description of a single-tape deterministic Turing machine.
// Slices are ordered: the encoder indexes states and tape symbols by position
// and emits transitions in slice order.
//
// A Machine is treated as immutable once handed to an engine or the encoder.
type Machine struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// SampleTape is an initial tape used when the caller supplies none.
	SampleTape string `json:"sample_tape,omitempty" yaml:"sample_tape,omitempty"`

	States []State `json:"states" yaml:"states"`

	// Symbols is the full symbol set. When empty it defaults to TapeAlphabet.
	Symbols       []Symbol `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	InputAlphabet []Symbol `json:"input_alphabet" yaml:"input_alphabet"`
	TapeAlphabet  []Symbol `json:"tape_alphabet" yaml:"tape_alphabet"`
	Blank         Symbol   `json:"blank" yaml:"blank"`

	Initial State   `json:"initial" yaml:"initial"`
	Final   []State `json:"final" yaml:"final"`

	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// SymbolSet returns the declared symbol set, falling back to the tape alphabet.
func (m *Machine) SymbolSet() []Symbol {
	if len(m.Symbols) == 0 {
		return m.TapeAlphabet
	}
	return m.Symbols
}

// HasState reports whether s is a declared state.
func (m *Machine) HasState(s State) bool {
	return slices.Contains(m.States, s)
}

// IsFinal reports whether s is one of the final (halting) states.
func (m *Machine) IsFinal(s State) bool {
	return slices.Contains(m.Final, s)
}

// InTapeAlphabet reports whether sym belongs to the tape alphabet.
func (m *Machine) InTapeAlphabet(sym Symbol) bool {
	return slices.Contains(m.TapeAlphabet, sym)
}

// Validate checks the structural invariants required to execute the machine.
// It does not check that transitions only reference declared states or symbols;
// see the validator for the full graph analysis.
func (m *Machine) Validate() error {
	if len(m.States) == 0 {
		return &ConfigurationError{Field: "states", Reason: "no states declared"}
	}
	if len(m.TapeAlphabet) == 0 {
		return &ConfigurationError{Field: "tape_alphabet", Reason: "no tape alphabet declared"}
	}
	if !m.InTapeAlphabet(m.Blank) {
		return &ConfigurationError{Field: "blank", Reason: fmt.Sprintf("blank symbol %q is not in the tape alphabet", m.Blank)}
	}
	symbols := m.SymbolSet()
	for _, sym := range m.TapeAlphabet {
		if !slices.Contains(symbols, sym) {
			return &ConfigurationError{Field: "tape_alphabet", Reason: fmt.Sprintf("symbol %q is not in the symbol set", sym)}
		}
	}
	if !m.HasState(m.Initial) {
		return &ConfigurationError{Field: "initial", Reason: fmt.Sprintf("initial state %q is not declared", m.Initial)}
	}
	for _, f := range m.Final {
		if !m.HasState(f) {
			return &ConfigurationError{Field: "final", Reason: fmt.Sprintf("final state %q is not declared", f)}
		}
	}
	_, err := m.Table()
	return err
}

// Table builds the lookup table of the transition function.
// Two rules sharing the same (state, symbol) pair make the machine non-deterministic
// and are rejected.
func (m *Machine) Table() (map[Key]Action, error) {
	table := make(map[Key]Action, len(m.Transitions))
	for i, t := range m.Transitions {
		if !t.Move.Valid() {
			return nil, &ConfigurationError{
				Field:  fmt.Sprintf("transitions[%d]", i),
				Reason: fmt.Sprintf("invalid direction %q", t.Move),
			}
		}
		if _, dup := table[t.Key()]; dup {
			return nil, &ConfigurationError{
				Field:  fmt.Sprintf("transitions[%d]", i),
				Reason: fmt.Sprintf("duplicate rule for (%s, %s)", t.From, t.Read),
			}
		}
		table[t.Key()] = t.Action()
	}
	return table, nil
}

// Clone returns a deep copy of the machine.
func (m *Machine) Clone() *Machine {
	if m == nil {
		return nil
	}
	c := *m
	c.States = slices.Clone(m.States)
	c.Symbols = slices.Clone(m.Symbols)
	c.InputAlphabet = slices.Clone(m.InputAlphabet)
	c.TapeAlphabet = slices.Clone(m.TapeAlphabet)
	c.Final = slices.Clone(m.Final)
	c.Transitions = slices.Clone(m.Transitions)
	return &c
}
