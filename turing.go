package turing

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/encoder"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and provides a simplified API for consumers.
// An Engine owns its configuration and is not safe for concurrent use; run
// machines concurrently by creating one Engine per run.
type Engine struct {
	runtime  *runtime.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	runID    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps bounds how many steps a single Run may apply (0 = unlimited).
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithRunID labels the run in logs, events and snapshots.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// New validates the machine and prepares a run over the given initial tape.
// It fails with a *domain.ConfigurationError when the tape is empty or the
// description breaks its structural invariants.
func New(machine *domain.Machine, tape []domain.Symbol, opts ...Option) (*Engine, error) {
	eng := configure(opts)
	rt, err := runtime.NewEngine(machine, tape, eng.runtimeOptions()...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Resume rebuilds an engine from a persisted snapshot.
func Resume(snap *domain.Snapshot, opts ...Option) (*Engine, error) {
	eng := configure(opts)
	rt, err := runtime.Restore(snap, eng.runtimeOptions()...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

func configure(opts []Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return eng
}

func (e *Engine) runtimeOptions() []runtime.EngineOption {
	opts := []runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithMaxSteps(e.maxSteps),
	}
	if e.runID != "" {
		opts = append(opts, runtime.WithRunID(e.runID))
	}
	return opts
}

// Step applies a single transition and returns its trace entry.
func (e *Engine) Step(ctx context.Context) (domain.TraceEntry, error) {
	return e.runtime.Step(ctx)
}

// Run executes until a final state is reached.
// It returns nil on halt, *domain.NoTransitionError when the machine rejects,
// *domain.StepLimitError when the step budget is exhausted or the context error.
func (e *Engine) Run(ctx context.Context) error {
	return e.runtime.Run(ctx)
}

// Trace returns the steps recorded so far, including those before a failure.
func (e *Engine) Trace() []domain.TraceEntry { return e.runtime.Trace() }

// State returns the current state.
func (e *Engine) State() domain.State { return e.runtime.State() }

// Tape returns a copy of the materialized tape.
func (e *Engine) Tape() []domain.Symbol { return e.runtime.Tape() }

// TapeString returns the tape contents as a string.
func (e *Engine) TapeString() string { return e.runtime.TapeString() }

// Head returns the head position.
func (e *Engine) Head() int { return e.runtime.Head() }

// Steps returns the number of applied steps.
func (e *Engine) Steps() int { return e.runtime.Steps() }

// Status returns the run status.
func (e *Engine) Status() domain.RunStatus { return e.runtime.Status() }

// Halted reports whether the machine sits in a final state.
func (e *Engine) Halted() bool { return e.runtime.Halted() }

// Machine returns the executed description.
func (e *Engine) Machine() *domain.Machine { return e.runtime.Machine() }

// Snapshot copies the run for persistence.
func (e *Engine) Snapshot() *domain.Snapshot { return e.runtime.Snapshot() }

// Encode returns the canonical encoding of the executed machine.
// The final states are the accept set.
func (e *Engine) Encode(reject ...domain.State) (string, error) {
	return encoder.EncodeMachine(e.runtime.Machine(), reject...)
}

// Encode returns the canonical encoding of an ordered description.
func Encode(d encoder.Description) (string, error) {
	return encoder.Encode(d)
}
