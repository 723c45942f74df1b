package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unaryYAML = `
name: unary-increment
states: [start, init, halt]
input_alphabet: [1]
tape_alphabet: [1, _]
blank: _
initial: start
final: halt
transitions:
  - {from: start, read: 1, next: init, write: 1, move: R}
  - {state: init, symbol: 1, to: init, dir: right}
rules:
  - "init, _: halt, 1, L"
`

func TestParser_Parse(t *testing.T) {
	m, err := NewParser().Parse([]byte(unaryYAML))
	require.NoError(t, err)

	assert.Equal(t, library.UnaryIncrement().Transitions, m.Transitions)
	assert.Equal(t, []domain.State{"halt"}, m.Final)
	assert.Equal(t, []domain.Symbol{"1"}, m.InputAlphabet)

	eng, err := runtime.NewEngine(m, domain.SplitTape("11"))
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background()))
	assert.Equal(t, "111", eng.TapeString())
}

func TestParser_DerivesMissingSections(t *testing.T) {
	m, err := NewParser().Parse([]byte(`
start: q0
accept: [qf]
input_alphabet: ["0"]
rules:
  - "q0, 0: q0, x, R"
  - "q0, _: qf, _, L"
`))
	require.NoError(t, err)

	assert.Equal(t, []domain.State{"q0", "qf"}, m.States)
	assert.Equal(t, []domain.Symbol{"0", "x", "_"}, m.TapeAlphabet)
	assert.Equal(t, domain.Symbol("_"), m.Blank)
}

func TestParser_JSON(t *testing.T) {
	m, err := NewParser().Parse([]byte(`{"initial":"a","final":["b"],"rules":["a, 1: b, 1, R"],"input_alphabet":["1"]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.State("a"), m.Initial)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "states: [a"},
		{"empty", ""},
		{"bad move", "initial: a\nfinal: b\ntransitions: [{from: a, read: x, next: b, move: U}]"},
		{"missing next", "initial: a\nfinal: b\ntransitions: [{from: a, read: x, move: R}]"},
		{"bad rule", "initial: a\nfinal: b\nrules: [\"a x b\"]"},
		{"wrong type", "initial: a\nfinal: b\ntransitions: 3"},
		{"duplicate rule", "initial: a\nfinal: b\nrules: [\"a, x: b, x, R\", \"a, x: a, x, L\"]"},
		{"undeclared initial", "states: [a]\ninitial: z\nfinal: a\ntape_alphabet: [_]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseRule(t *testing.T) {
	tr, err := ParseRule(" q0 , 1 : q1 , 0 , left ")
	require.NoError(t, err)
	assert.Equal(t, domain.Transition{From: "q0", Read: "1", Next: "q1", Write: "0", Move: domain.Left}, tr)

	for _, bad := range []string{"", "q0, 1", "q0: q1, 0, L", "q0, 1: q1, 0", "q0, 1: q1, 0, X"} {
		_, err := ParseRule(bad)
		assert.Error(t, err, bad)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, original := range library.All() {
		data, err := Marshal(original)
		require.NoError(t, err)

		parsed, err := NewParser().Parse(data)
		require.NoError(t, err, original.Name)
		assert.Equal(t, original, parsed, original.Name)
	}
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "increment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("initial: a\nfinal: b\nrules: [\"a, 1: b, 1, R\"]\ninput_alphabet: [1]\n"), 0o644))

	m, err := NewParser().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "increment", m.Name)

	_, err = NewParser().ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
