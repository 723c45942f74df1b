package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when a machine or its initial tape is malformed.
var ErrConfiguration = errors.New("invalid machine configuration")

// ErrNoTransition is returned when a non-final state has no rule for the symbol under the head.
var ErrNoTransition = errors.New("no transition defined")

// ErrUnknownSymbolOrState is returned by the encoder when a reference cannot be indexed.
var ErrUnknownSymbolOrState = errors.New("unknown symbol or state")

// ErrStepLimit is returned when a run exhausts its step budget without halting.
var ErrStepLimit = errors.New("step limit exceeded")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrMachineNotFound is returned when a loader has no machine with the requested name.
var ErrMachineNotFound = errors.New("machine not found")

// ConfigurationError describes the first structural problem found in a machine setup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NoTransitionError halts a run: the machine rejects its input.
type NoTransitionError struct {
	State  State
	Symbol Symbol
	Head   int
	// Step is the number of steps completed before the failure.
	Step int
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition defined for state '%s' and symbol '%s' (head %d, after %d steps)",
		e.State, e.Symbol, e.Head, e.Step)
}

func (e *NoTransitionError) Unwrap() error { return ErrNoTransition }

// UnknownSymbolOrStateError reports a reference the encoder cannot index.
type UnknownSymbolOrStateError struct {
	Kind  string // "state" or "symbol"
	Value string
	Where string // e.g. "transitions[2].next", "accept[0]"
}

func (e *UnknownSymbolOrStateError) Error() string {
	return fmt.Sprintf("unknown %s %q referenced by %s", e.Kind, e.Value, e.Where)
}

func (e *UnknownSymbolOrStateError) Unwrap() error { return ErrUnknownSymbolOrState }

// StepLimitError is returned when Run stops because of the configured budget.
type StepLimitError struct {
	Limit int
	State State
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit of %d reached in state '%s' without halting", e.Limit, e.State)
}

func (e *StepLimitError) Unwrap() error { return ErrStepLimit }
