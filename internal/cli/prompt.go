package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/domain"
)

// Prompter asks for a machine description on a line-oriented terminal.
// Every question shows its default; an empty answer (or end of input) accepts it.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	eof bool
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) readLine() (string, bool) {
	if p.eof || !p.in.Scan() {
		p.eof = true
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *Prompter) ask(label, def string) string {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	line, _ := p.readLine()
	if line == "" {
		return def
	}
	return line
}

func (p *Prompter) askList(label string, def []string) []string {
	answer := p.ask(label, strings.Join(def, ", "))
	return strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// Describe walks through every part of a machine, starting from defaults,
// and returns the described machine and the initial tape.
func (p *Prompter) Describe(defaults *domain.Machine) (*domain.Machine, []domain.Symbol, error) {
	m := defaults.Clone()

	m.States = toStates(p.askList("States", fromStates(m.States)))
	m.Symbols = toSymbols(p.askList("Symbols", fromSymbols(m.SymbolSet())))
	m.InputAlphabet = toSymbols(p.askList("Input alphabet", fromSymbols(m.InputAlphabet)))
	m.Blank = domain.Symbol(p.ask("Blank symbol", string(m.Blank)))
	m.TapeAlphabet = toSymbols(p.askList("Tape alphabet", fromSymbols(m.TapeAlphabet)))
	m.Initial = domain.State(p.ask("Initial state", string(m.Initial)))
	m.Final = toStates(p.askList("Final states", fromStates(m.Final)))
	m.Transitions = p.askTransitions(m.Transitions)
	tape := p.ask("Initial tape", m.SampleTape)

	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	return m, domain.SplitTape(tape), nil
}

// askTransitions reads rules until "end". An empty first line keeps defaults
// untouched; entered rules replace the default with the same (state, symbol)
// and are appended otherwise. Malformed lines are reported and asked again.
func (p *Prompter) askTransitions(defaults []domain.Transition) []domain.Transition {
	fmt.Fprintf(p.out, "Transitions (state, symbol: next, write, dir), one per line, \"end\" to finish.\n")
	fmt.Fprintf(p.out, "Press enter to keep the %d default rules.\n", len(defaults))

	rules := slices.Clone(defaults)
	first := true
	for {
		fmt.Fprint(p.out, "> ")
		line, ok := p.readLine()
		if !ok || line == "end" || (first && line == "") {
			return rules
		}
		if line == "" {
			continue
		}
		first = false

		t, err := compiler.ParseRule(line)
		if err != nil {
			fmt.Fprintf(p.out, "invalid rule: %v\n", err)
			continue
		}
		idx := slices.IndexFunc(rules, func(r domain.Transition) bool { return r.Key() == t.Key() })
		if idx >= 0 {
			rules[idx] = t
		} else {
			rules = append(rules, t)
		}
	}
}

func toStates(in []string) []domain.State {
	out := make([]domain.State, len(in))
	for i, s := range in {
		out[i] = domain.State(s)
	}
	return out
}

func fromStates(in []domain.State) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func toSymbols(in []string) []domain.Symbol {
	out := make([]domain.Symbol, len(in))
	for i, s := range in {
		out[i] = domain.Symbol(s)
	}
	return out
}

func fromSymbols(in []domain.Symbol) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
