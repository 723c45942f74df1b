package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unaryIncrement() *domain.Machine {
	return &domain.Machine{
		Name:          "unary-increment",
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

func TestEngine_Run_UnaryIncrement(t *testing.T) {
	engine, err := runtime.NewEngine(unaryIncrement(), domain.SplitTape("11"))
	require.NoError(t, err)

	require.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, "111", engine.TapeString())
	assert.Equal(t, domain.State("halt"), engine.State())
	assert.Equal(t, 1, engine.Head())
	assert.Equal(t, 3, engine.Steps())
	assert.Equal(t, domain.StatusHalted, engine.Status())
	assert.True(t, engine.Halted())

	trace := engine.Trace()
	require.Len(t, trace, 3)
	assert.Equal(t, domain.TraceEntry{
		Step:       1,
		State:      "init",
		Read:       "1",
		Transition: domain.Transition{From: "start", Read: "1", Next: "init", Write: "1", Move: domain.Right},
		Tape:       "11",
		Head:       1,
	}, trace[0])
	// The snapshot is taken after the move, so the appended blank is visible.
	assert.Equal(t, "11_", trace[1].Tape)
	assert.Equal(t, domain.Symbol("_"), trace[2].Read)
	assert.Equal(t, domain.State("halt"), trace[2].State)
	assert.Equal(t, "111", trace[2].Tape)
}

func TestEngine_Run_NoTransition(t *testing.T) {
	m := unaryIncrement()
	// Drop the blank rule: the run can never reach "halt".
	m.Transitions = m.Transitions[:2]

	engine, err := runtime.NewEngine(m, domain.SplitTape("11"))
	require.NoError(t, err)

	err = engine.Run(context.Background())
	require.Error(t, err)

	var noTransition *domain.NoTransitionError
	require.True(t, errors.As(err, &noTransition))
	assert.ErrorIs(t, err, domain.ErrNoTransition)
	assert.Equal(t, domain.State("init"), noTransition.State)
	assert.Equal(t, domain.Symbol("_"), noTransition.Symbol)
	assert.Equal(t, 2, noTransition.Step)
	assert.Equal(t, 2, noTransition.Head)

	// The trace accumulated before the failure stays inspectable.
	assert.Len(t, engine.Trace(), 2)
	assert.Equal(t, domain.StatusRejected, engine.Status())
	assert.Equal(t, "11_", engine.TapeString())
}

func TestEngine_Step_Invariants(t *testing.T) {
	m := &domain.Machine{
		States:       []domain.State{"l", "r", "done"},
		TapeAlphabet: []domain.Symbol{"x", "_"},
		Blank:        "_",
		Initial:      "l",
		Final:        []domain.State{"done"},
		Transitions: []domain.Transition{
			{From: "l", Read: "x", Next: "l", Write: "x", Move: domain.Left},
			{From: "l", Read: "_", Next: "r", Write: "x", Move: domain.Right},
			{From: "r", Read: "x", Next: "r", Write: "x", Move: domain.Right},
			{From: "r", Read: "_", Next: "done", Write: "x", Move: domain.Right},
		},
	}
	engine, err := runtime.NewEngine(m, domain.SplitTape("xx"))
	require.NoError(t, err)

	ctx := context.Background()
	for !engine.Halted() {
		_, err := engine.Step(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, engine.Tape())
		assert.GreaterOrEqual(t, engine.Head(), 0)
		assert.Less(t, engine.Head(), len(engine.Tape()))
		assert.Len(t, engine.Trace(), engine.Steps())
	}
	assert.Equal(t, "xxxx_", engine.TapeString())
	assert.Equal(t, 4, engine.Head())
}

func TestEngine_Step_LeftAtZeroPrependsOneBlank(t *testing.T) {
	m := &domain.Machine{
		States:       []domain.State{"s", "h"},
		TapeAlphabet: []domain.Symbol{"a", "b", "c", "_"},
		Blank:        "_",
		Initial:      "s",
		Final:        []domain.State{"h"},
		Transitions: []domain.Transition{
			{From: "s", Read: "a", Next: "h", Write: "c", Move: domain.Left},
		},
	}
	engine, err := runtime.NewEngine(m, domain.SplitTape("ab"))
	require.NoError(t, err)

	entry, err := engine.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "_cb", entry.Tape)
	assert.Equal(t, 0, entry.Head)
	assert.Equal(t, []domain.Symbol{"_", "c", "b"}, engine.Tape())
}

func TestEngine_Run_InitialStateIsFinal(t *testing.T) {
	m := unaryIncrement()
	m.Initial = "halt"

	engine, err := runtime.NewEngine(m, domain.SplitTape("1"))
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))
	assert.Empty(t, engine.Trace())

	_, err = engine.Step(context.Background())
	assert.ErrorIs(t, err, runtime.ErrHalted)
}

func TestEngine_Run_StepLimit(t *testing.T) {
	m := &domain.Machine{
		States:       []domain.State{"loop", "never"},
		TapeAlphabet: []domain.Symbol{"_"},
		Blank:        "_",
		Initial:      "loop",
		Final:        []domain.State{"never"},
		Transitions: []domain.Transition{
			{From: "loop", Read: "_", Next: "loop", Write: "_", Move: domain.Right},
		},
	}
	engine, err := runtime.NewEngine(m, domain.SplitTape("_"), runtime.WithMaxSteps(10))
	require.NoError(t, err)

	err = engine.Run(context.Background())
	var limitErr *domain.StepLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 10, limitErr.Limit)
	assert.Equal(t, 10, engine.Steps())
	assert.Equal(t, domain.StatusSuspended, engine.Status())

	// The budget applies per Run call.
	err = engine.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrStepLimit)
	assert.Equal(t, 20, engine.Steps())
}

func TestEngine_Run_Cancelled(t *testing.T) {
	engine, err := runtime.NewEngine(unaryIncrement(), domain.SplitTape("11"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, engine.Steps())
	assert.Equal(t, domain.StatusSuspended, engine.Status())
}

func TestNewEngine_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *domain.Machine)
		tape   []domain.Symbol
	}{
		{"empty tape", func(m *domain.Machine) {}, nil},
		{"blank outside tape alphabet", func(m *domain.Machine) { m.Blank = "#" }, domain.SplitTape("1")},
		{"tape alphabet outside symbol set", func(m *domain.Machine) { m.Symbols = []domain.Symbol{"1"} }, domain.SplitTape("1")},
		{"undeclared initial state", func(m *domain.Machine) { m.Initial = "nowhere" }, domain.SplitTape("1")},
		{"undeclared final state", func(m *domain.Machine) { m.Final = []domain.State{"nowhere"} }, domain.SplitTape("1")},
		{"duplicate rule", func(m *domain.Machine) {
			m.Transitions = append(m.Transitions, m.Transitions[0])
		}, domain.SplitTape("1")},
		{"invalid direction", func(m *domain.Machine) { m.Transitions[0].Move = "U" }, domain.SplitTape("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := unaryIncrement()
			tt.mutate(m)
			_, err := runtime.NewEngine(m, tt.tape)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)

			var cfgErr *domain.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}

	_, err := runtime.NewEngine(nil, domain.SplitTape("1"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEngine_Hooks(t *testing.T) {
	var steps []int
	var halted *domain.HaltEvent
	hooks := domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			steps = append(steps, e.Entry.Step)
			assert.Equal(t, "run-1", e.RunID)
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			halted = e
		},
	}

	engine, err := runtime.NewEngine(unaryIncrement(), domain.SplitTape("11"),
		runtime.WithLifecycleHooks(hooks), runtime.WithRunID("run-1"))
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, []int{1, 2, 3}, steps)
	require.NotNil(t, halted)
	assert.Equal(t, domain.EventHalt, halted.Type)
	assert.Equal(t, "111", halted.Tape)
	assert.Equal(t, 3, halted.Steps)
}

func TestEngine_RejectHook(t *testing.T) {
	var rejected *domain.HaltEvent
	m := unaryIncrement()
	m.Transitions = m.Transitions[:1]

	engine, err := runtime.NewEngine(m, domain.SplitTape("11"), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnReject: func(_ context.Context, e *domain.HaltEvent) { rejected = e },
	}))
	require.NoError(t, err)

	err = engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNoTransition)
	require.NotNil(t, rejected)
	assert.Equal(t, domain.EventReject, rejected.Type)
	assert.ErrorIs(t, rejected.Err, domain.ErrNoTransition)
}

func TestEngine_SnapshotRestore(t *testing.T) {
	engine, err := runtime.NewEngine(unaryIncrement(), domain.SplitTape("11"),
		runtime.WithRunID("r"), runtime.WithMaxSteps(1))
	require.NoError(t, err)
	require.ErrorIs(t, engine.Run(context.Background()), domain.ErrStepLimit)

	snap := engine.Snapshot()
	assert.Equal(t, "r", snap.RunID)
	assert.Equal(t, domain.StatusSuspended, snap.Status)
	assert.Equal(t, 1, snap.Steps)

	resumed, err := runtime.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, "r", resumed.RunID())
	require.NoError(t, resumed.Run(context.Background()))
	assert.Equal(t, "111", resumed.TapeString())
	assert.Len(t, resumed.Trace(), 3)
	assert.Equal(t, []int{1, 2, 3}, []int{resumed.Trace()[0].Step, resumed.Trace()[1].Step, resumed.Trace()[2].Step})

	// The original engine is unaffected by the resumed run.
	assert.Equal(t, 1, engine.Steps())
}

func TestRestore_Invalid(t *testing.T) {
	_, err := runtime.Restore(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = runtime.Restore(&domain.Snapshot{Machine: unaryIncrement(), Tape: domain.SplitTape("1"), State: "ghost"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
