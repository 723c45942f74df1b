// Package library ships ready-made machines.
package library

import (
	"fmt"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
)

var builtins = map[string]func() *domain.Machine{
	"binary-multiplier": BinaryMultiplier,
	"unary-increment":   UnaryIncrement,
}

// Default is the machine used when the caller does not pick one.
const Default = "binary-multiplier"

// Get returns a fresh copy of the named machine.
func Get(name string) (*domain.Machine, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return build(), nil
}

// Names lists the built-in machines in lexical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a fresh copy of every built-in machine, ordered by name.
func All() []*domain.Machine {
	machines := make([]*domain.Machine, 0, len(builtins))
	for _, name := range Names() {
		machines = append(machines, builtins[name]())
	}
	return machines
}

// UnaryIncrement appends one "1" to a unary number.
func UnaryIncrement() *domain.Machine {
	return &domain.Machine{
		Name:          "unary-increment",
		Description:   "Adds one to a unary number (11 -> 111).",
		SampleTape:    "11",
		States:        []domain.State{"start", "init", "halt"},
		InputAlphabet: []domain.Symbol{"1"},
		TapeAlphabet:  []domain.Symbol{"1", "_"},
		Blank:         "_",
		Initial:       "start",
		Final:         []domain.State{"halt"},
		Transitions: []domain.Transition{
			{From: "start", Read: "1", Next: "init", Write: "1", Move: domain.Right},
			{From: "init", Read: "1", Next: "init", Write: "1", Move: domain.Right},
			{From: "init", Read: "_", Next: "halt", Write: "1", Move: domain.Left},
		},
	}
}

// BinaryMultiplier multiplies two binary numbers separated by a blank.
// "11_11" halts on "_1001_______" (3 x 3 = 9) after 92 steps.
func BinaryMultiplier() *domain.Machine {
	return &domain.Machine{
		Name:        "binary-multiplier",
		Description: "Multiplies two binary numbers separated by a blank (11_11 -> 1001).",
		SampleTape:  "11_11",
		States: []domain.State{
			"start", "init", "right", "shift0", "shift1", "shift", "tidy", "done",
			"readB", "read", "add0", "add1", "addA", "rewrite", "doubleL", "double", "back0",
			"back1", "carry", "have0", "have1", "aster",
		},
		InputAlphabet: []domain.Symbol{"0", "1", "*"},
		TapeAlphabet:  []domain.Symbol{"0", "1", "*", "_", "i", "c", "o", "+"},
		Blank:         "_",
		Initial:       "start",
		Final:         []domain.State{"done"},
		Transitions: []domain.Transition{
			{From: "start", Read: "0", Next: "init", Write: "0", Move: domain.Left},
			{From: "start", Read: "1", Next: "init", Write: "1", Move: domain.Left},
			{From: "init", Read: "_", Next: "aster", Write: "+", Move: domain.Right},
			{From: "aster", Read: "0", Next: "aster", Write: "0", Move: domain.Right},
			{From: "aster", Read: "1", Next: "aster", Write: "1", Move: domain.Right},
			{From: "aster", Read: "_", Next: "right", Write: "*", Move: domain.Right},
			{From: "right", Read: "0", Next: "right", Write: "0", Move: domain.Right},
			{From: "right", Read: "1", Next: "right", Write: "1", Move: domain.Right},
			{From: "right", Read: "*", Next: "right", Write: "*", Move: domain.Right},
			{From: "right", Read: "_", Next: "readB", Write: "_", Move: domain.Left},
			{From: "readB", Read: "1", Next: "addA", Write: "_", Move: domain.Left},
			{From: "readB", Read: "0", Next: "doubleL", Write: "_", Move: domain.Left},
			{From: "addA", Read: "0", Next: "addA", Write: "0", Move: domain.Left},
			{From: "addA", Read: "1", Next: "addA", Write: "1", Move: domain.Left},
			{From: "addA", Read: "*", Next: "read", Write: "*", Move: domain.Left},
			{From: "read", Read: "0", Next: "have0", Write: "c", Move: domain.Left},
			{From: "read", Read: "1", Next: "have1", Write: "c", Move: domain.Left},
			{From: "read", Read: "+", Next: "rewrite", Write: "+", Move: domain.Left},
			{From: "have0", Read: "0", Next: "have0", Write: "0", Move: domain.Left},
			{From: "have0", Read: "1", Next: "have0", Write: "1", Move: domain.Left},
			{From: "have0", Read: "+", Next: "add0", Write: "+", Move: domain.Left},
			{From: "add0", Read: "o", Next: "add0", Write: "o", Move: domain.Left},
			{From: "add0", Read: "i", Next: "add0", Write: "i", Move: domain.Left},
			{From: "add0", Read: "1", Next: "back0", Write: "i", Move: domain.Right},
			{From: "add0", Read: "0", Next: "back0", Write: "o", Move: domain.Right},
			{From: "add0", Read: "_", Next: "back0", Write: "o", Move: domain.Right},
			{From: "back0", Read: "0", Next: "back0", Write: "0", Move: domain.Right},
			{From: "back0", Read: "1", Next: "back0", Write: "1", Move: domain.Right},
			{From: "back0", Read: "o", Next: "back0", Write: "o", Move: domain.Right},
			{From: "back0", Read: "i", Next: "back0", Write: "i", Move: domain.Right},
			{From: "back0", Read: "+", Next: "back0", Write: "+", Move: domain.Right},
			{From: "back0", Read: "c", Next: "read", Write: "0", Move: domain.Left},
			{From: "rewrite", Read: "0", Next: "rewrite", Write: "0", Move: domain.Left},
			{From: "rewrite", Read: "1", Next: "rewrite", Write: "1", Move: domain.Left},
			{From: "rewrite", Read: "o", Next: "rewrite", Write: "0", Move: domain.Left},
			{From: "rewrite", Read: "i", Next: "rewrite", Write: "1", Move: domain.Left},
			{From: "rewrite", Read: "_", Next: "double", Write: "_", Move: domain.Right},
			{From: "double", Read: "0", Next: "double", Write: "0", Move: domain.Right},
			{From: "double", Read: "1", Next: "double", Write: "1", Move: domain.Right},
			{From: "double", Read: "+", Next: "double", Write: "+", Move: domain.Right},
			{From: "double", Read: "*", Next: "shift", Write: "0", Move: domain.Right},
			{From: "have1", Read: "0", Next: "have1", Write: "0", Move: domain.Left},
			{From: "have1", Read: "1", Next: "have1", Write: "1", Move: domain.Left},
			{From: "have1", Read: "+", Next: "add1", Write: "+", Move: domain.Left},
			{From: "add1", Read: "o", Next: "add1", Write: "o", Move: domain.Left},
			{From: "add1", Read: "i", Next: "add1", Write: "i", Move: domain.Left},
			{From: "add1", Read: "1", Next: "carry", Write: "o", Move: domain.Left},
			{From: "add1", Read: "0", Next: "back1", Write: "i", Move: domain.Right},
			{From: "add1", Read: "_", Next: "back1", Write: "i", Move: domain.Right},
			{From: "carry", Read: "1", Next: "carry", Write: "0", Move: domain.Left},
			{From: "carry", Read: "0", Next: "back1", Write: "1", Move: domain.Right},
			{From: "carry", Read: "_", Next: "back1", Write: "1", Move: domain.Right},
			{From: "back1", Read: "0", Next: "back1", Write: "0", Move: domain.Right},
			{From: "back1", Read: "1", Next: "back1", Write: "1", Move: domain.Right},
			{From: "back1", Read: "o", Next: "back1", Write: "o", Move: domain.Right},
			{From: "back1", Read: "i", Next: "back1", Write: "i", Move: domain.Right},
			{From: "back1", Read: "+", Next: "back1", Write: "+", Move: domain.Right},
			{From: "back1", Read: "c", Next: "read", Write: "1", Move: domain.Left},
			{From: "doubleL", Read: "0", Next: "doubleL", Write: "0", Move: domain.Left},
			{From: "doubleL", Read: "1", Next: "doubleL", Write: "1", Move: domain.Left},
			{From: "doubleL", Read: "*", Next: "shift", Write: "0", Move: domain.Right},
			{From: "shift", Read: "0", Next: "shift0", Write: "*", Move: domain.Right},
			{From: "shift", Read: "1", Next: "shift1", Write: "*", Move: domain.Right},
			{From: "shift", Read: "_", Next: "tidy", Write: "_", Move: domain.Left},
			{From: "shift0", Read: "0", Next: "shift0", Write: "0", Move: domain.Right},
			{From: "shift0", Read: "1", Next: "shift1", Write: "0", Move: domain.Right},
			{From: "shift0", Read: "_", Next: "right", Write: "0", Move: domain.Right},
			{From: "shift1", Read: "1", Next: "shift1", Write: "1", Move: domain.Right},
			{From: "shift1", Read: "0", Next: "shift0", Write: "1", Move: domain.Right},
			{From: "shift1", Read: "_", Next: "right", Write: "1", Move: domain.Right},
			{From: "tidy", Read: "0", Next: "tidy", Write: "_", Move: domain.Left},
			{From: "tidy", Read: "1", Next: "tidy", Write: "_", Move: domain.Left},
			{From: "tidy", Read: "+", Next: "done", Write: "_", Move: domain.Left},
		},
	}
}
