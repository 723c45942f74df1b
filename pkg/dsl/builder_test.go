package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/dsl"
	"github.com/aretw0/turing/pkg/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_UnaryIncrement(t *testing.T) {
	b := dsl.New("unary-increment").Input("1").Start("start")
	b.State("start").On("1").Right("init")
	b.State("init").
		On("1").Right("init").
		On("_").Write("1").Left("halt")
	b.Final("halt")

	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []domain.State{"start", "init", "halt"}, m.States)
	assert.Equal(t, []domain.Symbol{"1", "_"}, m.TapeAlphabet)
	assert.Equal(t, domain.Symbol("_"), m.Blank)
	require.Len(t, m.Transitions, 3)
	assert.Equal(t, domain.Transition{From: "start", Read: "1", Next: "init", Write: "1", Move: domain.Right}, m.Transitions[0])

	engine, err := runtime.NewEngine(m, domain.SplitTape("11"))
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))
	assert.Equal(t, "111", engine.TapeString())

	got, err := encoder.EncodeMachine(m)
	require.NoError(t, err)
	assert.Equal(t, "0001110110111100101101101102110110110110110211011021021011011110011102111", got)
}

func TestBuilder_ExplicitTapeAlphabet(t *testing.T) {
	b := dsl.New("x").Blank("B").Input("a").Tape("a", "B", "z").Start("s").Final("h")
	b.State("s").On("a").Write("z").Right("h")

	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []domain.Symbol{"a", "B", "z"}, m.TapeAlphabet)
	assert.Equal(t, []domain.State{"s", "h"}, m.States)
}

func TestBuilder_InvalidMachine(t *testing.T) {
	b := dsl.New("dup").Input("1").Start("s").Final("h")
	b.State("s").
		On("1").Right("h").
		On("1").Left("h")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	assert.Panics(t, func() { b.MustBuild() })
}
