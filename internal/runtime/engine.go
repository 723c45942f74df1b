package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/turing/pkg/domain"
)

// ErrHalted is returned by Step when the machine sits in a final state with no rule to apply.
var ErrHalted = errors.New("machine already halted")

// Engine is the core Turing machine runner.
// It owns its configuration (state, tape, head) and trace; it is not safe for concurrent use.
type Engine struct {
	machine *domain.Machine
	table   map[domain.Key]domain.Action

	state  domain.State
	tape   *Tape
	steps  int
	status domain.RunStatus
	trace  []domain.TraceEntry

	runID    string
	maxSteps int
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps bounds the number of steps a single Run call may apply (0 = unlimited).
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithRunID labels events, logs and snapshots of this run.
func WithRunID(id string) EngineOption {
	return func(e *Engine) {
		e.runID = id
	}
}

// NewEngine validates the machine and builds the initial configuration:
// (initial state, copy of the initial tape, head 0) with an empty trace.
func NewEngine(machine *domain.Machine, initialTape []domain.Symbol, opts ...EngineOption) (*Engine, error) {
	if machine == nil {
		return nil, &domain.ConfigurationError{Reason: "machine description is missing"}
	}
	tape, err := NewTape(initialTape, machine.Blank)
	if err != nil {
		return nil, err
	}
	return newEngine(machine, tape, machine.Initial, 0, nil, opts)
}

// Restore rebuilds an engine from a snapshot, keeping its trace and step count.
func Restore(snap *domain.Snapshot, opts ...EngineOption) (*Engine, error) {
	if snap == nil || snap.Machine == nil {
		return nil, &domain.ConfigurationError{Reason: "snapshot has no machine description"}
	}
	tape, err := restoreTape(snap.Tape, snap.Head, snap.Machine.Blank)
	if err != nil {
		return nil, err
	}
	if !snap.Machine.HasState(snap.State) {
		return nil, &domain.ConfigurationError{Field: "state", Reason: "snapshot state is not declared by its machine"}
	}
	opts = append([]EngineOption{WithRunID(snap.RunID)}, opts...)
	e, err := newEngine(snap.Machine.Clone(), tape, snap.State, snap.Steps, snap.Trace, opts)
	if err != nil {
		return nil, err
	}
	if snap.Status == domain.StatusRejected {
		e.status = domain.StatusRejected
	}
	return e, nil
}

func newEngine(machine *domain.Machine, tape *Tape, state domain.State, steps int, trace []domain.TraceEntry, opts []EngineOption) (*Engine, error) {
	if err := machine.Validate(); err != nil {
		return nil, err
	}
	table, err := machine.Table()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		machine: machine,
		table:   table,
		state:   state,
		tape:    tape,
		steps:   steps,
		trace:   slices.Clone(trace),
		status:  domain.StatusRunning,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if machine.IsFinal(state) {
		e.status = domain.StatusHalted
	}
	e.logger = e.logger.With("machine", machine.Name)
	if e.runID != "" {
		e.logger = e.logger.With("run_id", e.runID)
	}
	return e, nil
}

// Step applies exactly one transition.
// On a missing rule it returns a *domain.NoTransitionError and leaves the configuration untouched.
func (e *Engine) Step(ctx context.Context) (domain.TraceEntry, error) {
	read := e.tape.Read()
	action, ok := e.table[domain.Key{State: e.state, Symbol: read}]
	if !ok {
		if e.machine.IsFinal(e.state) {
			return domain.TraceEntry{}, ErrHalted
		}
		err := &domain.NoTransitionError{
			State:  e.state,
			Symbol: read,
			Head:   e.tape.Head(),
			Step:   e.steps,
		}
		e.status = domain.StatusRejected
		e.logger.Warn("no transition defined", "state", e.state, "symbol", read, "head", e.tape.Head(), "steps", e.steps)
		e.emitReject(ctx, err)
		return domain.TraceEntry{}, err
	}

	from := e.state
	e.tape.Write(action.Write)
	e.state = action.Next
	e.tape.Move(action.Move)
	e.steps++

	entry := domain.TraceEntry{
		Step:  e.steps,
		State: e.state,
		Read:  read,
		Transition: domain.Transition{
			From:  from,
			Read:  read,
			Next:  action.Next,
			Write: action.Write,
			Move:  action.Move,
		},
		Tape: e.tape.String(),
		Head: e.tape.Head(),
	}
	e.trace = append(e.trace, entry)

	if e.machine.IsFinal(e.state) {
		e.status = domain.StatusHalted
	} else {
		e.status = domain.StatusRunning
	}

	e.logger.Debug("step applied", "step", entry.Step, "from", from, "read", read, "to", entry.State, "head", entry.Head)
	e.emitStep(ctx, entry)
	return entry, nil
}

// Run steps the machine until it reaches a final state.
// It returns nil on halt, *domain.NoTransitionError when the machine rejects,
// *domain.StepLimitError when the step budget runs out, or the context error on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	executed := 0
	for !e.machine.IsFinal(e.state) {
		if err := ctx.Err(); err != nil {
			e.status = domain.StatusSuspended
			return err
		}
		if e.maxSteps > 0 && executed >= e.maxSteps {
			e.status = domain.StatusSuspended
			e.logger.Warn("step limit reached", "limit", e.maxSteps, "state", e.state)
			return &domain.StepLimitError{Limit: e.maxSteps, State: e.state}
		}
		if _, err := e.Step(ctx); err != nil {
			return err
		}
		executed++
	}

	e.status = domain.StatusHalted
	e.logger.Info("final state reached", "state", e.state, "steps", e.steps)
	e.emitHalt(ctx)
	return nil
}

// Trace returns a copy of the entries recorded so far.
func (e *Engine) Trace() []domain.TraceEntry {
	return slices.Clone(e.trace)
}

// State returns the current state.
func (e *Engine) State() domain.State { return e.state }

// Tape returns a copy of the materialized tape.
func (e *Engine) Tape() []domain.Symbol { return e.tape.Cells() }

// TapeString returns the tape contents as a string.
func (e *Engine) TapeString() string { return e.tape.String() }

// Head returns the head position.
func (e *Engine) Head() int { return e.tape.Head() }

// Steps returns the number of successfully applied steps.
func (e *Engine) Steps() int { return e.steps }

// Status reports whether the run is running, halted, rejected or suspended.
func (e *Engine) Status() domain.RunStatus { return e.status }

// Halted reports whether the current state is final.
func (e *Engine) Halted() bool { return e.machine.IsFinal(e.state) }

// Machine returns the description the engine executes.
func (e *Engine) Machine() *domain.Machine { return e.machine }

// RunID returns the identifier given with WithRunID.
func (e *Engine) RunID() string { return e.runID }

// Snapshot copies the configuration and trace for persistence.
func (e *Engine) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		RunID:     e.runID,
		Machine:   e.machine.Clone(),
		State:     e.state,
		Tape:      e.tape.Cells(),
		Head:      e.tape.Head(),
		Steps:     e.steps,
		Status:    e.status,
		Trace:     e.Trace(),
		UpdatedAt: time.Now().UTC(),
	}
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     e.runID,
		Machine:   e.machine.Name,
	}
}

func (e *Engine) emitStep(ctx context.Context, entry domain.TraceEntry) {
	if e.hooks.OnStep == nil {
		return
	}
	e.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStep),
		Entry:     entry,
		Cells:     e.tape.Cells(),
	})
}

func (e *Engine) emitHalt(ctx context.Context) {
	if e.hooks.OnHalt == nil {
		return
	}
	e.hooks.OnHalt(ctx, &domain.HaltEvent{
		EventBase: e.base(domain.EventHalt),
		State:     e.state,
		Steps:     e.steps,
		Tape:      e.tape.String(),
	})
}

func (e *Engine) emitReject(ctx context.Context, err error) {
	if e.hooks.OnReject == nil {
		return
	}
	e.hooks.OnReject(ctx, &domain.HaltEvent{
		EventBase: e.base(domain.EventReject),
		State:     e.state,
		Steps:     e.steps,
		Tape:      e.tape.String(),
		Err:       err,
	})
}
