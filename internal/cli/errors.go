package cli

import (
	"errors"

	"github.com/aretw0/turing/pkg/domain"
)

// Exit codes returned by the turing binary.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitRejected      = 3
	ExitStepLimit     = 4
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrUnknownSymbolOrState):
		return ExitConfiguration
	case errors.Is(err, domain.ErrNoTransition):
		return ExitRejected
	case errors.Is(err, domain.ErrStepLimit):
		return ExitStepLimit
	}
	return ExitFailure
}
