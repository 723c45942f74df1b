package domain

import (
	"fmt"
	"strings"
)

// State is an opaque state identifier.
type State string

// Symbol is an opaque tape symbol.
type Symbol string

// Direction is the head movement applied after a write.
type Direction string

const (
	Left  Direction = "L"
	Right Direction = "R"
)

// ParseDirection accepts "L"/"R" and the long forms, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return "", fmt.Errorf("invalid direction %q (expected L or R)", s)
}

// Valid reports whether d is one of Left or Right.
func (d Direction) Valid() bool {
	return d == Left || d == Right
}

// Key is the composite lookup key of the transition table.
type Key struct {
	State  State
	Symbol Symbol
}

// Action is the right-hand side of a transition.
type Action struct {
	Next  State     `json:"next" yaml:"next"`
	Write Symbol    `json:"write" yaml:"write"`
	Move  Direction `json:"move" yaml:"move"`
}

// Transition defines a rule: reading Read while in From writes Write,
// switches to Next and moves the head.
type Transition struct {
	From  State     `json:"from" yaml:"from"`
	Read  Symbol    `json:"read" yaml:"read"`
	Next  State     `json:"next" yaml:"next"`
	Write Symbol    `json:"write" yaml:"write"`
	Move  Direction `json:"move" yaml:"move"`
}

// Key returns the lookup key of the transition.
func (t Transition) Key() Key {
	return Key{State: t.From, Symbol: t.Read}
}

// Action returns the right-hand side of the transition.
func (t Transition) Action() Action {
	return Action{Next: t.Next, Write: t.Write, Move: t.Move}
}

// String renders the rule in the prompt syntax: "state, symbol: next, write, dir".
func (t Transition) String() string {
	return fmt.Sprintf("%s, %s: %s, %s, %s", t.From, t.Read, t.Next, t.Write, t.Move)
}
