package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

const (
	blockSeparator = "111"
	itemSeparator  = "11"
)

// Description is the ordered input of Encode.
type Description struct {
	States        []domain.State
	InputAlphabet []domain.Symbol
	TapeAlphabet  []domain.Symbol
	Transitions   []domain.Transition
	Start         domain.State
	Accept        []domain.State
	Reject        []domain.State
}

// FromMachine builds a Description from a machine; its final states become the accept set.
func FromMachine(m *domain.Machine, reject ...domain.State) Description {
	return Description{
		States:        m.States,
		InputAlphabet: m.InputAlphabet,
		TapeAlphabet:  m.TapeAlphabet,
		Transitions:   m.Transitions,
		Start:         m.Initial,
		Accept:        m.Final,
		Reject:        reject,
	}
}

// Encode returns the canonical encoding of d.
// Every reference is resolved before anything is emitted: an unknown state or
// symbol yields a *domain.UnknownSymbolOrStateError and no partial output.
// Besides transition, accept and reject references, every input alphabet symbol
// must also appear in the tape alphabet, since the alphabet block counts the
// input symbols as the leading part of the tape alphabet.
func Encode(d Description) (string, error) {
	idx := newIndexer(d)

	for i, sym := range d.InputAlphabet {
		if _, err := idx.symbol(sym, fmt.Sprintf("input_alphabet[%d]", i)); err != nil {
			return "", err
		}
	}

	rules := make([]string, 0, len(d.Transitions))
	for n, t := range d.Transitions {
		rule, err := idx.transition(n, t)
		if err != nil {
			return "", err
		}
		rules = append(rules, rule)
	}

	start, err := idx.state(d.Start, "start")
	if err != nil {
		return "", err
	}
	accept, err := idx.stateList(d.Accept, "accept")
	if err != nil {
		return "", err
	}
	reject, err := idx.stateList(d.Reject, "reject")
	if err != nil {
		return "", err
	}

	m := len(d.InputAlphabet)
	p := len(d.TapeAlphabet) - m

	blocks := []string{
		strings.Repeat("0", len(d.States)),
		"0" + strconv.Itoa(m) + "10" + strconv.Itoa(p),
		strings.Join(rules, itemSeparator),
		"0" + strconv.Itoa(start),
		accept,
		reject,
	}
	return strings.Join(blocks, blockSeparator), nil
}

// EncodeMachine is a shortcut for Encode(FromMachine(m, reject...)).
func EncodeMachine(m *domain.Machine, reject ...domain.State) (string, error) {
	if m == nil {
		return "", &domain.ConfigurationError{Reason: "machine description is missing"}
	}
	return Encode(FromMachine(m, reject...))
}

// indexer resolves positions; the first occurrence wins when a slice repeats a value.
type indexer struct {
	states  map[domain.State]int
	symbols map[domain.Symbol]int
}

func newIndexer(d Description) *indexer {
	idx := &indexer{
		states:  make(map[domain.State]int, len(d.States)),
		symbols: make(map[domain.Symbol]int, len(d.TapeAlphabet)),
	}
	for i, s := range d.States {
		if _, seen := idx.states[s]; !seen {
			idx.states[s] = i
		}
	}
	for i, sym := range d.TapeAlphabet {
		if _, seen := idx.symbols[sym]; !seen {
			idx.symbols[sym] = i
		}
	}
	return idx
}

func (x *indexer) state(s domain.State, where string) (int, error) {
	i, ok := x.states[s]
	if !ok {
		return 0, &domain.UnknownSymbolOrStateError{Kind: "state", Value: string(s), Where: where}
	}
	return i, nil
}

func (x *indexer) symbol(sym domain.Symbol, where string) (int, error) {
	i, ok := x.symbols[sym]
	if !ok {
		return 0, &domain.UnknownSymbolOrStateError{Kind: "symbol", Value: string(sym), Where: where}
	}
	return i, nil
}

func (x *indexer) transition(n int, t domain.Transition) (string, error) {
	where := fmt.Sprintf("transitions[%d]", n)
	i, err := x.state(t.From, where+".from")
	if err != nil {
		return "", err
	}
	j, err := x.symbol(t.Read, where+".read")
	if err != nil {
		return "", err
	}
	k, err := x.state(t.Next, where+".next")
	if err != nil {
		return "", err
	}
	l, err := x.symbol(t.Write, where+".write")
	if err != nil {
		return "", err
	}

	d := 2
	if t.Move == domain.Left {
		d = 1
	}
	return fmt.Sprintf("0%d10%d10%d10%d10%d", i, j+1, k, l+1, d), nil
}

func (x *indexer) stateList(states []domain.State, name string) (string, error) {
	parts := make([]string, 0, len(states))
	for n, s := range states {
		i, err := x.state(s, fmt.Sprintf("%s[%d]", name, n))
		if err != nil {
			return "", err
		}
		parts = append(parts, "0"+strconv.Itoa(i))
	}
	return strings.Join(parts, itemSeparator), nil
}
